package repository

import (
	"encoding/json"
	"fmt"

	"teams-pollbot/internal/domain/poll"
	pollbot_errors "teams-pollbot/pkg/errors"
)

func encodeState(state *poll.State) ([]byte, error) {
	if state == nil {
		state = poll.NewState()
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal state: %v", pollbot_errors.ErrStorageWriteFailed, err)
	}
	return data, nil
}

func decodeState(data []byte) (*poll.State, error) {
	if len(data) == 0 {
		return poll.NewState(), nil
	}
	var state poll.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal state: %v", pollbot_errors.ErrStorageReadFailed, err)
	}
	return state.Normalize(), nil
}

func readFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", pollbot_errors.ErrStorageReadFailed, op, err)
}

func writeFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", pollbot_errors.ErrStorageWriteFailed, op, err)
}
