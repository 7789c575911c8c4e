package rtsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type task struct {
	stops int
}

func (t *task) Stop() {
	t.stops++
}

func TestMachine(t *testing.T) {
	var m Machine
	require.Equal(t, KindIdle, m.Kind())
	require.Nil(t, m.Session())

	session := &Session{ID: 123456, Resource: "clip.bin"}
	require.Nil(t, m.Negotiate(session))
	require.Equal(t, Negotiated{Session: session}, m.State())

	// second negotiate is not allowed
	require.ErrorIs(t, m.Negotiate(&Session{ID: 1}), ErrProtocol)
	require.Equal(t, session, m.Session())

	tk := &task{}
	require.Nil(t, m.Start(123456, tk))
	require.Equal(t, KindStreaming, m.Kind())

	require.ErrorIs(t, m.Start(123456, &task{}), ErrProtocol)

	require.Nil(t, m.Pause(123456))
	require.Equal(t, 1, tk.stops)
	require.Equal(t, KindNegotiated, m.Kind())

	require.ErrorIs(t, m.Pause(123456), ErrProtocol)

	// same session can be started again
	tk = &task{}
	require.Nil(t, m.Start(123456, tk))

	released, err := m.Stop(123456)
	require.Nil(t, err)
	require.Equal(t, session, released)
	require.Equal(t, 1, tk.stops)
	require.Equal(t, KindIdle, m.Kind())
}

func TestMachineWrongSession(t *testing.T) {
	var m Machine
	_, err := m.CanStart(1)
	require.ErrorIs(t, err, ErrProtocol)

	_, err = m.Stop(1)
	require.ErrorIs(t, err, ErrProtocol)

	require.Nil(t, m.Negotiate(&Session{ID: 123456}))

	for _, id := range []uint32{0, 654321} {
		_, err = m.CanStart(id)
		require.ErrorIs(t, err, ErrProtocol)
		require.ErrorIs(t, m.Start(id, &task{}), ErrProtocol)
		_, err = m.Stop(id)
		require.ErrorIs(t, err, ErrProtocol)
		require.Equal(t, KindNegotiated, m.Kind())
	}

	tk := &task{}
	require.Nil(t, m.Start(123456, tk))
	require.ErrorIs(t, m.Pause(654321), ErrProtocol)
	require.Equal(t, KindStreaming, m.Kind())
	require.Equal(t, 0, tk.stops)
}

func TestMachineClose(t *testing.T) {
	var m Machine
	require.Nil(t, m.Close())

	session := &Session{ID: 123456}
	tk := &task{}
	require.Nil(t, m.Negotiate(session))
	require.Nil(t, m.Start(session.ID, tk))

	require.Equal(t, session, m.Close())
	require.Equal(t, 1, tk.stops)
	require.Equal(t, KindIdle, m.Kind())
}

func TestSessionID(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := newSessionID()
		require.GreaterOrEqual(t, id, uint32(minSessionID))
		require.LessOrEqual(t, id, uint32(maxSessionID))
	}
}
