package service

import (
	"errors"
	"fmt"

	"bot-ladder/internal/domain"
)

// ErrNoEligibleMatchup means fewer than two enabled, non-in-flight bots
// exist right now. Recoverable: workers back off and retry.
var ErrNoEligibleMatchup = errors.New("no eligible matchup available")

// ErrBotDisabled means a selected bot was disabled between listing and
// reservation. Treated like starvation by the scheduler.
var ErrBotDisabled = errors.New("bot disabled during matchmaking")

// ErrPublishInProgress means a publish cycle is already running; the
// trigger is dropped, not queued.
var ErrPublishInProgress = errors.New("publish cycle already in progress")

// ExecutionError wraps an engine fault that prevented a game from
// producing any result. The game is abandoned and the worker carries on.
type ExecutionError struct {
	Matchup domain.Matchup
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("game execution failed (%s vs %s on %s): %v",
		e.Matchup.BotA.Name, e.Matchup.BotB.Name, e.Matchup.Map, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
