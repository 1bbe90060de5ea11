package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
)

// MemoryStore keeps documents in process memory
type MemoryStore struct {
	mu     sync.Mutex
	docs   map[string]map[string]any
	subs   map[int]*memorySub
	nextID int
}

type memorySub struct {
	cpf string
	ch  chan []contracts.Document
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]any),
		subs: make(map[int]*memorySub),
	}
}

// Set creates or replaces the document keyed by stock.Symbol
func (m *MemoryStore) Set(ctx context.Context, stock contracts.Stock) error {
	if stock.Symbol == "" {
		return fmt.Errorf("set document: empty symbol")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[stock.Symbol] = encodeStock(stock)
	m.notifyLocked()
	return nil
}

// Update merges fields into the document keyed by symbol
func (m *MemoryStore) Update(ctx context.Context, symbol string, fields map[string]any) error {
	values, deleted, err := splitPatch(fields)
	if err != nil {
		return fmt.Errorf("update document %s: %w", symbol, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[symbol]
	if !ok {
		return fmt.Errorf("update document %s: %w", symbol, ErrDocumentNotFound)
	}

	for k, v := range values {
		doc[k] = v
	}
	for _, k := range deleted {
		delete(doc, k)
	}

	m.notifyLocked()
	return nil
}

// List returns the documents belonging to cpf ordered by symbol
func (m *MemoryStore) List(ctx context.Context, cpf string) ([]contracts.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked(cpf), nil
}

// Subscribe emits the documents of cpf now and after every write
func (m *MemoryStore) Subscribe(ctx context.Context, cpf string) (<-chan []contracts.Document, error) {
	ch := make(chan []contracts.Document, 1)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = &memorySub{cpf: cpf, ch: ch}
	emit(ch, m.listLocked(cpf))
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		close(ch)
		m.mu.Unlock()
	}()

	return ch, nil
}

// Document returns a copy of the raw document keyed by symbol
func (m *MemoryStore) Document(symbol string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[symbol]
	if !ok {
		return nil, false
	}
	return copyMap(doc), true
}

func (m *MemoryStore) notifyLocked() {
	for _, sub := range m.subs {
		emit(sub.ch, m.listLocked(sub.cpf))
	}
}

func (m *MemoryStore) listLocked(cpf string) []contracts.Document {
	docs := []contracts.Document{}
	for symbol, data := range m.docs {
		if c, _ := data["cpf"].(string); c != cpf {
			continue
		}
		docs = append(docs, contracts.Document{ID: symbol, Data: copyMap(data)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
