package llm

import "io"

// Stream is a finite sequence of text deltas from a streaming completion.
// Recv returns io.EOF when the model is done; any other error means the
// stream died mid-way and the partial result must be discarded by the caller.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// SliceStream replays a fixed set of deltas. Used by heuristic fallbacks and
// in tests where a remote stream is stubbed out.
type SliceStream struct {
	deltas []string
	pos    int
	err    error // returned after the deltas are exhausted, instead of io.EOF
}

func NewSliceStream(deltas []string) *SliceStream {
	return &SliceStream{deltas: deltas}
}

// NewFailingStream replays deltas and then fails with err instead of EOF.
func NewFailingStream(deltas []string, err error) *SliceStream {
	return &SliceStream{deltas: deltas, err: err}
}

func (s *SliceStream) Recv() (string, error) {
	if s.pos >= len(s.deltas) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	delta := s.deltas[s.pos]
	s.pos++
	return delta, nil
}

func (s *SliceStream) Close() error { return nil }
