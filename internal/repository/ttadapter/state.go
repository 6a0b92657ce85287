package ttadapter

import (
	"context"
	"fmt"
	"time"

	"teams-pollbot/internal/domain/poll"
	pollbot_errors "teams-pollbot/pkg/errors"

	"github.com/tarantool/go-tarantool/v2"
)

const (
	stateSpace = "poll_state"
	stateKey   = "current"

	reconnectInterval = 3 * time.Second
	maxReconnects     = 5
)

type Config struct {
	Address  string
	User     string
	Password string
}

// Connect dials tarantool with the reconnect policy the service uses.
func Connect(ctx context.Context, cfg Config) (*tarantool.Connection, error) {
	dialer := tarantool.NetDialer{
		Address:  cfg.Address,
		User:     cfg.User,
		Password: cfg.Password,
	}
	opts := tarantool.Opts{
		Timeout:       time.Second,
		Reconnect:     reconnectInterval,
		MaxReconnects: maxReconnects,
	}
	return tarantool.Connect(ctx, dialer, opts)
}

// StateRepository keeps the document as a single msgpack tuple in the
// poll_state space, whose primary index is on the first (string) field.
type StateRepository struct {
	conn *tarantool.Connection
}

func NewStateRepository(conn *tarantool.Connection) *StateRepository {
	return &StateRepository{conn: conn}
}

func (r *StateRepository) Load(ctx context.Context) (*poll.State, error) {
	var res []StateModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(stateSpace).
			Context(ctx).
			Index("primary").
			Limit(1).
			Key(tarantool.StringKey{S: stateKey}),
	).GetTyped(&res); err != nil {
		return nil, fmt.Errorf("%w: could not select typed state in tarantool: %v", pollbot_errors.ErrStorageReadFailed, err)
	}
	if len(res) == 0 {
		return poll.NewState(), nil
	}
	return res[0].ToState(), nil
}

func (r *StateRepository) Save(ctx context.Context, state *poll.State) error {
	if state == nil {
		state = poll.NewState()
	}
	if _, err := r.conn.Do(
		tarantool.NewReplaceRequest(stateSpace).
			Context(ctx).
			Tuple(NewStateModel(stateKey, state)),
	).Get(); err != nil {
		return fmt.Errorf("%w: could not replace in tarantool: %v", pollbot_errors.ErrStorageWriteFailed, err)
	}
	return nil
}

func (r *StateRepository) Ping(ctx context.Context) error {
	_, err := r.conn.Do(tarantool.NewPingRequest().Context(ctx)).Get()
	return err
}
