package content

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cooperval/content-services/pkg/logger"
	"github.com/cooperval/content-services/pkg/metrics"
)

// ReconcileDelay is how long after a confirmed delete the authoritative
// re-fetch runs, to catch eventual-consistency lag on the store side.
const ReconcileDelay = 500 * time.Millisecond

// ErrDeleteNotPending is returned by ConfirmDelete when no confirmation was
// requested for the id first.
var ErrDeleteNotPending = errors.New("delete not pending confirmation")

// CancelFunc cancels a scheduled task. Safe to call after the task ran.
type CancelFunc func()

// Scheduler owns the delayed-reconciliation timers so the view lifecycle can
// cancel them deterministically on teardown instead of relying on a global
// timer whose result has to be discarded.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) CancelFunc
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) CancelFunc {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Reconciler keeps the cached per-kind document list in agreement with the
// remote store across create/update/delete. Mutations to the list happen only
// here; readers get copies.
//
// Policy, simplest-correct throughout: saves trigger a full authoritative
// re-fetch (no optimistic append — server-computed fields would drift);
// deletes remove the entry optimistically and schedule a second re-fetch
// after a fixed delay; every re-fetch replaces the list wholesale.
type Reconciler struct {
	store Store
	kind  Kind
	delay time.Duration
	sched Scheduler

	mu      sync.Mutex
	current []Document
	pending map[string]struct{}
	cancels []CancelFunc
	closed  bool
}

// NewReconciler builds a reconciler for one content kind.
func NewReconciler(store Store, kind Kind) *Reconciler {
	return &Reconciler{
		store:   store,
		kind:    kind,
		delay:   ReconcileDelay,
		sched:   timerScheduler{},
		pending: make(map[string]struct{}),
	}
}

func (r *Reconciler) fetch(ctx context.Context) ([]Document, error) {
	switch r.kind {
	case KindNews:
		list, err := r.store.FetchNews(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Document, len(list))
		for i, n := range list {
			out[i] = n
		}
		return out, nil
	default:
		list, err := r.store.FetchPromotions(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Document, len(list))
		for i, p := range list {
			out[i] = p
		}
		return out, nil
	}
}

// Refresh replaces the cached list with the store's full result set.
func (r *Reconciler) Refresh(ctx context.Context) error {
	list, err := r.fetch(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	if !r.closed {
		r.current = list
	}
	r.mu.Unlock()
	return nil
}

// OnSaveSuccess reconciles after a successful create or update. The list is
// never patched in place from local knowledge; the store stays authoritative.
func (r *Reconciler) OnSaveSuccess(ctx context.Context) error {
	return r.Refresh(ctx)
}

// RequestDelete marks id as awaiting explicit confirmation. No remote call is
// made until ConfirmDelete.
func (r *Reconciler) RequestDelete(id string) {
	r.mu.Lock()
	r.pending[id] = struct{}{}
	r.mu.Unlock()
}

// CancelDelete drops a pending confirmation.
func (r *Reconciler) CancelDelete(id string) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// PendingDelete reports whether id awaits confirmation.
func (r *Reconciler) PendingDelete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[id]
	return ok
}

// ConfirmDelete issues the remote delete for a previously requested id. On
// success the entry is removed from the cached list immediately and an
// authoritative re-fetch is scheduled after the fixed delay. On failure the
// list is left untouched (and the pending state kept) so the operator can
// retry or cancel.
func (r *Reconciler) ConfirmDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.pending[id]; !ok {
		r.mu.Unlock()
		return ErrDeleteNotPending
	}
	r.mu.Unlock()

	if err := r.store.Delete(ctx, id); err != nil {
		logger.Errorf("delete %s %s failed: %v", r.kind, id, err)
		return err
	}

	r.mu.Lock()
	delete(r.pending, id)
	kept := r.current[:0:0]
	for _, d := range r.current {
		if d.DocumentID() != id {
			kept = append(kept, d)
		}
	}
	r.current = kept
	if !r.closed {
		cancel := r.sched.AfterFunc(r.delay, r.delayedRefetch)
		r.cancels = append(r.cancels, cancel)
	}
	r.mu.Unlock()
	return nil
}

// delayedRefetch is fire-and-forget: nobody awaits it and its error is only
// logged. Results arriving after Close are discarded.
func (r *Reconciler) delayedRefetch() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	metrics.ReconcileRefetches.WithLabelValues(string(r.kind)).Inc()
	if err := r.Refresh(ctx); err != nil {
		logger.Warnf("delayed %s re-fetch failed: %v", r.kind, err)
	}
}

// Current returns a copy of the cached list.
func (r *Reconciler) Current() []Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Document, len(r.current))
	copy(out, r.current)
	return out
}

// Close cancels outstanding delayed re-fetches and freezes the list. Any
// re-fetch already running will find the reconciler closed and discard its
// result instead of applying it.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closed = true
	cancels := r.cancels
	r.cancels = nil
	r.mu.Unlock()
	for _, c := range cancels {
		c()
	}
}
