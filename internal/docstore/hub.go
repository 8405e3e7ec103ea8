package docstore

import (
	"sync"

	"webshop/internal/platform/stream"
)

// hub tracks in-process watchers for backends that fan out change
// notifications themselves (memory, postgres).
type hub struct {
	mu   sync.Mutex
	docs map[string]map[*stream.Stream[DocumentSnapshot]]struct{}
	cols map[string]map[*stream.Stream[QuerySnapshot]]struct{}
}

func newHub() *hub {
	return &hub{
		docs: make(map[string]map[*stream.Stream[DocumentSnapshot]]struct{}),
		cols: make(map[string]map[*stream.Stream[QuerySnapshot]]struct{}),
	}
}

func (h *hub) addDocument(path string) *stream.Stream[DocumentSnapshot] {
	var st *stream.Stream[DocumentSnapshot]
	st = stream.New[DocumentSnapshot](func() { h.removeDocument(path, st) })
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.docs[path] == nil {
		h.docs[path] = make(map[*stream.Stream[DocumentSnapshot]]struct{})
	}
	h.docs[path][st] = struct{}{}
	return st
}

func (h *hub) addCollection(collection string) *stream.Stream[QuerySnapshot] {
	var st *stream.Stream[QuerySnapshot]
	st = stream.New[QuerySnapshot](func() { h.removeCollection(collection, st) })
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cols[collection] == nil {
		h.cols[collection] = make(map[*stream.Stream[QuerySnapshot]]struct{})
	}
	h.cols[collection][st] = struct{}{}
	return st
}

func (h *hub) removeDocument(path string, st *stream.Stream[DocumentSnapshot]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.docs[path], st)
	if len(h.docs[path]) == 0 {
		delete(h.docs, path)
	}
}

func (h *hub) removeCollection(collection string, st *stream.Stream[QuerySnapshot]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.cols[collection], st)
	if len(h.cols[collection]) == 0 {
		delete(h.cols, collection)
	}
}

func (h *hub) documentWatchers(path string) []*stream.Stream[DocumentSnapshot] {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*stream.Stream[DocumentSnapshot], 0, len(h.docs[path]))
	for st := range h.docs[path] {
		out = append(out, st)
	}
	return out
}

func (h *hub) collectionWatchers(collection string) []*stream.Stream[QuerySnapshot] {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*stream.Stream[QuerySnapshot], 0, len(h.cols[collection]))
	for st := range h.cols[collection] {
		out = append(out, st)
	}
	return out
}

// revoke fails and detaches every watcher under prefix.
func (h *hub) revoke(prefix string) int {
	return h.fail(prefix, ErrPermissionDenied)
}

// fail detaches every watcher under prefix and delivers err to it.
func (h *hub) fail(prefix string, err error) int {
	h.mu.Lock()
	var docs []*stream.Stream[DocumentSnapshot]
	var cols []*stream.Stream[QuerySnapshot]
	for path, set := range h.docs {
		if underPrefix(path, prefix) {
			for st := range set {
				docs = append(docs, st)
			}
			delete(h.docs, path)
		}
	}
	for collection, set := range h.cols {
		if underPrefix(collection, prefix) {
			for st := range set {
				cols = append(cols, st)
			}
			delete(h.cols, collection)
		}
	}
	h.mu.Unlock()

	for _, st := range docs {
		st.Fail(err)
	}
	for _, st := range cols {
		st.Fail(err)
	}
	return len(docs) + len(cols)
}

func (h *hub) watcherCount(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.docs[path]) + len(h.cols[path])
}
