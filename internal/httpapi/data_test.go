package httpapi

import (
	"fmt"
	"net/http"
	"testing"

	"memoryd/pkg/types"
)

func TestSessionsAndMessages(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(t, http.MethodPost, "/sessions", types.CreateSessionRequest{Title: "Pets"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session=%d %s", w.Code, w.Body.String())
	}
	s := decode[types.Session](t, w)

	path := fmt.Sprintf("/sessions/%d/messages", s.ID)
	w = ts.do(t, http.MethodPost, path, types.CreateMessageRequest{Content: "My cat is called Tom", IsUser: true})
	if w.Code != http.StatusCreated {
		t.Fatalf("create message=%d %s", w.Code, w.Body.String())
	}
	if w := ts.do(t, http.MethodPost, path, types.CreateMessageRequest{Content: "Nice name", IsUser: false}); w.Code != http.StatusCreated {
		t.Fatalf("create reply=%d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, path, types.CreateMessageRequest{Content: "  "}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty message=%d", w.Code)
	}

	msgs := decode[[]types.Message](t, ts.do(t, http.MethodGet, path, nil))
	if len(msgs) != 2 || msgs[0].Content != "My cat is called Tom" || !msgs[0].IsUser || msgs[1].IsUser {
		t.Fatalf("messages=%+v", msgs)
	}

	sessions := decode[[]types.Session](t, ts.do(t, http.MethodGet, "/sessions", nil))
	if len(sessions) != 1 || sessions[0].MessageCount != 2 || sessions[0].Title != "Pets" {
		t.Fatalf("sessions=%+v", sessions)
	}

	found := decode[[]types.Message](t, ts.do(t, http.MethodGet, "/messages/search?q=cat", nil))
	if len(found) != 1 || found[0].SessionTitle != "Pets" {
		t.Fatalf("search=%+v", found)
	}
	if w := ts.do(t, http.MethodGet, "/messages/search", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("search without q=%d", w.Code)
	}

	st := decode[types.DataStatsResponse](t, ts.do(t, http.MethodGet, "/stats", nil))
	if st.Sessions != 1 || st.Messages != 2 || st.UserMessages != 1 || st.AssistantMessages != 1 {
		t.Fatalf("stats=%+v", st)
	}

	ts.svc.Wait()
	if w := ts.do(t, http.MethodDelete, fmt.Sprintf("/sessions/%d", s.ID), nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete=%d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, path, nil); w.Code != http.StatusNotFound {
		t.Fatalf("messages of deleted session=%d", w.Code)
	}
	idx := decode[types.IndexStatsResponse](t, ts.do(t, http.MethodGet, "/index/stats", nil))
	if idx.Total != 0 {
		t.Fatalf("embeddings left after delete: %+v", idx)
	}
}

func TestSessionErrors(t *testing.T) {
	ts := newTestServer(t, false)
	if w := ts.do(t, http.MethodGet, "/sessions/abc/messages", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id=%d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/sessions/42/messages", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown session list=%d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/sessions/42/messages", types.CreateMessageRequest{Content: "hi", IsUser: true}); w.Code != http.StatusNotFound {
		t.Fatalf("unknown session insert=%d", w.Code)
	}
	if w := ts.do(t, http.MethodDelete, "/sessions/42", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown session delete=%d", w.Code)
	}
}

func TestMemoriesAndRAG(t *testing.T) {
	ts := newTestServer(t, false)
	w := ts.do(t, http.MethodPost, "/memories", types.CreateMemoryRequest{Content: "User has a cat called Tom", Category: "pets", Importance: 9})
	if w.Code != http.StatusCreated {
		t.Fatalf("create memory=%d %s", w.Code, w.Body.String())
	}
	m := decode[types.Memory](t, w)
	if m.Category != "pets" || m.Importance != 9 {
		t.Fatalf("memory=%+v", m)
	}
	if w := ts.do(t, http.MethodPost, "/memories", types.CreateMemoryRequest{Content: "User lives in Riga"}); w.Code != http.StatusCreated {
		t.Fatalf("create second memory=%d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/memories", types.CreateMemoryRequest{Content: ""}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty memory=%d", w.Code)
	}

	if got := decode[[]types.Memory](t, ts.do(t, http.MethodGet, "/memories", nil)); len(got) != 2 {
		t.Fatalf("memories=%+v", got)
	}
	if got := decode[[]types.Memory](t, ts.do(t, http.MethodGet, "/memories?category=pets", nil)); len(got) != 1 {
		t.Fatalf("by category=%+v", got)
	}
	top := decode[[]types.Memory](t, ts.do(t, http.MethodGet, "/memories/top?limit=1", nil))
	if len(top) != 1 || top[0].ID != m.ID {
		t.Fatalf("top=%+v", top)
	}

	ts.svc.Wait()
	res := decode[types.RAGSearchResponse](t, ts.do(t, http.MethodPost, "/rag/search", types.RAGSearchRequest{Query: "User has a cat called Tom", Limit: 1}))
	if len(res.Hits) != 1 || res.Hits[0].SourceKind != "memory" || res.Hits[0].SourceID != m.ID {
		t.Fatalf("rag=%+v", res)
	}
	if w := ts.do(t, http.MethodPost, "/rag/search", types.RAGSearchRequest{}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty query=%d", w.Code)
	}

	if w := ts.do(t, http.MethodDelete, fmt.Sprintf("/memories/%d", m.ID), nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete memory=%d", w.Code)
	}
	if w := ts.do(t, http.MethodDelete, fmt.Sprintf("/memories/%d", m.ID), nil); w.Code != http.StatusNotFound {
		t.Fatalf("delete again=%d", w.Code)
	}
}

func TestIndexMessages(t *testing.T) {
	ts := newTestServer(t, false)
	s := decode[types.Session](t, ts.do(t, http.MethodPost, "/sessions", types.CreateSessionRequest{}))
	path := fmt.Sprintf("/sessions/%d/messages", s.ID)
	for _, c := range []string{"first", "second"} {
		if w := ts.do(t, http.MethodPost, path, types.CreateMessageRequest{Content: c, IsUser: true}); w.Code != http.StatusCreated {
			t.Fatalf("create=%d", w.Code)
		}
	}
	ts.svc.Wait()
	// Background indexing already stored both messages.
	got := decode[types.IndexResponse](t, ts.do(t, http.MethodPost, "/index/messages", nil))
	if got.Indexed != 0 {
		t.Fatalf("indexed=%d", got.Indexed)
	}
	st := decode[types.IndexStatsResponse](t, ts.do(t, http.MethodGet, "/index/stats", nil))
	if st.Total != 2 || st.ByKind["message"] != 2 || st.Dimension != 4096 {
		t.Fatalf("index stats=%+v", st)
	}
}

func TestPersona(t *testing.T) {
	ts := newTestServer(t, false)
	if w := ts.do(t, http.MethodGet, "/persona", nil); w.Code != http.StatusNotFound {
		t.Fatalf("persona before analyze=%d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/persona/analyze", nil); w.Code != http.StatusConflict {
		t.Fatalf("analyze without messages=%d", w.Code)
	}

	s := decode[types.Session](t, ts.do(t, http.MethodPost, "/sessions", types.CreateSessionRequest{}))
	path := fmt.Sprintf("/sessions/%d/messages", s.ID)
	for _, c := range []string{"hey, how is it going?", "thanks, that helps a lot"} {
		if w := ts.do(t, http.MethodPost, path, types.CreateMessageRequest{Content: c, IsUser: true}); w.Code != http.StatusCreated {
			t.Fatalf("create=%d", w.Code)
		}
	}
	p := decode[types.Persona](t, ts.do(t, http.MethodPost, "/persona/analyze", nil))
	if p.MessagesAnalyzed != 2 || p.Summary == "" || p.Language != "en" {
		t.Fatalf("persona=%+v", p)
	}
	if got := decode[types.Persona](t, ts.do(t, http.MethodGet, "/persona", nil)); got.MessagesAnalyzed != 2 {
		t.Fatalf("stored persona=%+v", got)
	}
}
