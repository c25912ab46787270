package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	msgs []kafka.Message
	err  error
}

func (s *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func (s *stubWriter) Close() error { return nil }

type stubReader struct {
	msgs []kafka.Message
	err  error
}

func (s *stubReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(s.msgs) == 0 {
		if s.err != nil {
			return kafka.Message{}, s.err
		}
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := s.msgs[0]
	s.msgs = s.msgs[1:]
	return msg, nil
}

func (s *stubReader) Close() error { return nil }

func TestPublishKeysByCollection(t *testing.T) {
	w := &stubWriter{}
	pub := NewPublisherWithWriter(w, nil)

	change := NewChange("public_documents", "doc-1", OpUpdate)
	require.NoError(t, pub.Publish(context.Background(), change))

	require.Len(t, w.msgs, 1)
	require.Equal(t, "public_documents", string(w.msgs[0].Key))

	var decoded Change
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	require.Equal(t, change.ID, decoded.ID)
	require.Equal(t, OpUpdate, decoded.Op)
	require.Equal(t, "doc-1", decoded.DocumentID)
}

func TestPublishWrapsWriterError(t *testing.T) {
	pub := NewPublisherWithWriter(&stubWriter{err: errors.New("broker down")}, nil)
	err := pub.Publish(context.Background(), NewChange("c", "d", OpDelete))
	require.ErrorContains(t, err, "broker down")
}

func TestListenSkipsMalformedAndStopsOnError(t *testing.T) {
	good, err := json.Marshal(NewChange("public_documents", "doc-2", OpInsert))
	require.NoError(t, err)

	r := &stubReader{
		msgs: []kafka.Message{{Value: []byte("{not json")}, {Value: good}},
		err:  io.ErrUnexpectedEOF,
	}

	var got []Change
	var reported error
	Listen(context.Background(), r, nil,
		func(c Change) { got = append(got, c) },
		func(err error) { reported = err },
	)

	require.Len(t, got, 1)
	require.Equal(t, "doc-2", got[0].DocumentID)
	require.ErrorIs(t, reported, io.ErrUnexpectedEOF)
}

func TestListenReturnsQuietlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	Listen(ctx, &stubReader{}, nil, func(Change) {}, func(error) { called = true })
	require.False(t, called)
}
