package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pruneRecorder struct {
	cutoffs []time.Time
	removed int
	err     error
}

func (p *pruneRecorder) Append(ctx context.Context, userID, question, response string) error {
	return nil
}

func (p *pruneRecorder) History(ctx context.Context, userID string) ([]Record, error) {
	return nil, nil
}

func (p *pruneRecorder) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	p.cutoffs = append(p.cutoffs, cutoff)
	return p.removed, p.err
}

func (p *pruneRecorder) Close() error { return nil }

func TestNewSweeperRejectsInvalidSchedule(t *testing.T) {
	_, err := NewSweeper(&pruneRecorder{}, "every day at dawn", 24*time.Hour, testLogger())
	require.Error(t, err)
}

func TestNewSweeperZeroMaxAgeDisablesSweep(t *testing.T) {
	store := &pruneRecorder{}
	sweeper, err := NewSweeper(store, "0 3 * * *", 0, testLogger())
	require.NoError(t, err)
	require.Nil(t, sweeper.schedule)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sweeper.Run(ctx), context.Canceled)
	require.Empty(t, store.cutoffs)
}

func TestSweeperScheduleNextTick(t *testing.T) {
	sweeper, err := NewSweeper(&pruneRecorder{}, "0 3 * * *", 7*24*time.Hour, testLogger())
	require.NoError(t, err)

	noon := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC), sweeper.schedule.Next(noon))

	// Empty expression falls back to the daily default.
	fallback, err := NewSweeper(&pruneRecorder{}, "", 7*24*time.Hour, testLogger())
	require.NoError(t, err)
	require.Equal(t, sweeper.schedule.Next(noon), fallback.schedule.Next(noon))
}

func TestSweeperSweepUsesMaxAgeCutoff(t *testing.T) {
	store := &pruneRecorder{removed: 3}
	sweeper, err := NewSweeper(store, "0 3 * * *", 48*time.Hour, testLogger())
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	sweeper.sweep(context.Background(), now)

	require.Len(t, store.cutoffs, 1)
	require.Equal(t, now.Add(-48*time.Hour), store.cutoffs[0])
}

func TestSweeperSweepSurvivesStoreFailure(t *testing.T) {
	store := &pruneRecorder{err: errors.New("disk gone")}
	sweeper, err := NewSweeper(store, "0 3 * * *", 24*time.Hour, testLogger())
	require.NoError(t, err)

	sweeper.sweep(context.Background(), time.Now())
	require.Len(t, store.cutoffs, 1)
}
