package assemble

import (
	"context"
	"errors"

	"memoryd/internal/memstore"
)

var errSource = errors.New("source unavailable")

type fakeFacts struct {
	mems []memstore.Memory
	err  error
}

func (f fakeFacts) TopMemories(_ context.Context, limit int) ([]memstore.Memory, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.mems) > limit {
		return f.mems[:limit], nil
	}
	return f.mems, nil
}

type fakeSemantic struct {
	hits  []ContextHit
	err   error
	query *string
}

func (f fakeSemantic) FindContext(_ context.Context, q string, limit int, min float32) ([]ContextHit, error) {
	if f.query != nil {
		*f.query = q
	}
	if f.err != nil {
		return nil, f.err
	}
	var out []ContextHit
	for _, h := range f.hits {
		if h.Similarity >= min && len(out) < limit {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeKeywords struct {
	msgs  []memstore.GlobalMessage
	err   error
	query *string
}

func (f fakeKeywords) SearchOtherSessions(_ context.Context, q string, exclude int64, limit int) ([]memstore.GlobalMessage, error) {
	if f.query != nil {
		*f.query = q
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]memstore.GlobalMessage, 0, len(f.msgs))
	for _, m := range f.msgs {
		if m.SessionID != exclude && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakePersona struct {
	p   memstore.Persona
	ok  bool
	err error
}

func (f fakePersona) GetPersona(context.Context) (memstore.Persona, bool, error) {
	return f.p, f.ok, f.err
}
