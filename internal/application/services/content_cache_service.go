package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/avatarctic/bookshelf/internal/core/domain/catalog"
	"github.com/avatarctic/bookshelf/internal/core/domain/contentcache"
	"github.com/avatarctic/bookshelf/internal/core/ports"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	TierMemory  = "memory"
	TierDurable = "durable"
)

// ContentCacheConfig groups configuration parameters for the content cache.
type ContentCacheConfig struct {
	MinResults int
	MaxResults int
	// KeyPolicies overrides the merge policy for individual subject keys.
	KeyPolicies    map[string]contentcache.MergePolicy
	RebuildTimeout time.Duration
	SingleFlight   bool
	Clock          func() time.Time
}

// ContentCacheService serves payloads from a process-local tier backed by a
// durable tier and rebuilds them on miss. Rebuilds are detached from the
// caller so that a cancelled request still refreshes both tiers.
type ContentCacheService struct {
	repo           ports.ContentCacheRepository
	memory         *memoryTier
	policy         contentcache.MergePolicy
	keyPolicies    map[string]contentcache.MergePolicy
	rebuildTimeout time.Duration
	singleFlight   bool
	group          singleflight.Group
	now            func() time.Time
	observer       ports.ContentCacheObserver
	logger         *logrus.Logger
}

type rebuildResult struct {
	payload    []catalog.Item
	storageErr error
}

func NewContentCacheService(repo ports.ContentCacheRepository, cfg *ContentCacheConfig, observer ports.ContentCacheObserver, logger *logrus.Logger) *ContentCacheService {
	// Apply defaults
	policy := contentcache.DefaultMergePolicy
	rt := 30 * time.Second
	sf := true
	clock := time.Now
	var keyPolicies map[string]contentcache.MergePolicy
	if cfg != nil {
		if cfg.MinResults > 0 {
			policy.MinResults = cfg.MinResults
		}
		if cfg.MaxResults > 0 {
			policy.MaxResults = cfg.MaxResults
		}
		if cfg.RebuildTimeout > 0 {
			rt = cfg.RebuildTimeout
		}
		if cfg.Clock != nil {
			clock = cfg.Clock
		}
		sf = cfg.SingleFlight
		keyPolicies = cfg.KeyPolicies
	}
	if policy.MaxResults < policy.MinResults {
		policy.MaxResults = policy.MinResults
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &ContentCacheService{
		repo:           repo,
		memory:         newMemoryTier(),
		policy:         policy,
		keyPolicies:    keyPolicies,
		rebuildTimeout: rt,
		singleFlight:   sf,
		now:            clock,
		observer:       observer,
		logger:         logger,
	}
}

var _ ports.ContentCache = (*ContentCacheService)(nil)

func (s *ContentCacheService) Get(ctx context.Context, subjectKey string, signature []string, ttl time.Duration, rebuild ports.RebuildFunc) ([]catalog.Item, error) {
	if subjectKey == "" || ttl <= 0 || rebuild == nil {
		return nil, fmt.Errorf("%w: key=%q ttl=%s rebuild=%t", contentcache.ErrInvalidRequest, subjectKey, ttl, rebuild != nil)
	}

	now := s.now()
	local, gen := s.memory.snapshot(subjectKey)
	if local.Valid(signature, ttl, now) {
		s.observer.Hit(TierMemory)
		return slices.Clone(local.Payload), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var storageErrs []error
	durable, err := s.repo.Get(ctx, subjectKey)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		storageErrs = append(storageErrs, s.storageFailure("read", subjectKey, err))
		durable = nil
	}

	// A local invalidation outranks whatever the durable tier still holds.
	forced := local != nil && local.Invalidated
	if !forced && durable.Valid(signature, ttl, now) {
		s.memory.publish(durable, gen)
		s.observer.Hit(TierDurable)
		return slices.Clone(durable.Payload), nil
	}
	s.observer.Miss()

	res, err := s.rebuild(ctx, subjectKey, gen, signature, priorPayload(local, durable), rebuild)
	if err != nil {
		return nil, errors.Join(append(storageErrs, err)...)
	}
	if res.storageErr != nil {
		storageErrs = append(storageErrs, res.storageErr)
	}
	return slices.Clone(res.payload), errors.Join(storageErrs...)
}

func (s *ContentCacheService) Invalidate(ctx context.Context, subjectKey string) error {
	if subjectKey == "" {
		return fmt.Errorf("%w: empty key", contentcache.ErrInvalidRequest)
	}
	s.memory.invalidate(subjectKey)
	if err := s.repo.MarkInvalidated(ctx, subjectKey); err != nil {
		return s.storageFailure("invalidate", subjectKey, err)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"subject_key": subjectKey}).Debug("content cache: invalidated")
	}
	return nil
}

// Peek returns the current entry without validity checks, local tier first.
func (s *ContentCacheService) Peek(ctx context.Context, subjectKey string) (*contentcache.Entry, error) {
	if e := s.memory.load(subjectKey); e != nil {
		return e, nil
	}
	e, err := s.repo.Get(ctx, subjectKey)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, s.storageFailure("read", subjectKey, err)
	}
	return e, nil
}

// rebuild runs fn on a context detached from ctx. When ctx ends first the
// caller gets ctx.Err() and the rebuild carries on to populate both tiers.
// Flights are keyed by generation so a Get after Invalidate never joins a
// rebuild that started before it.
func (s *ContentCacheService) rebuild(ctx context.Context, key string, gen uint64, signature []string, prior []catalog.Item, fn ports.RebuildFunc) (*rebuildResult, error) {
	detached := context.WithoutCancel(ctx)
	sig := slices.Clone(signature)
	run := func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(detached, s.rebuildTimeout)
		defer cancel()
		return s.rebuildAndStore(rctx, key, gen, sig, prior, fn), nil
	}

	var ch <-chan singleflight.Result
	if s.singleFlight {
		ch = s.group.DoChan(flightKey(key, gen, sig), run)
	} else {
		c := make(chan singleflight.Result, 1)
		go func() {
			v, err := run()
			c <- singleflight.Result{Val: v, Err: err}
		}()
		ch = c
	}

	select {
	case r := <-ch:
		return r.Val.(*rebuildResult), nil
	case <-ctx.Done():
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"subject_key": key}).Debug("content cache: caller left, rebuild continues in background")
		}
		return nil, ctx.Err()
	}
}

func (s *ContentCacheService) rebuildAndStore(ctx context.Context, key string, gen uint64, signature []string, prior []catalog.Item, fn ports.RebuildFunc) *rebuildResult {
	fresh, err := fn(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"subject_key": key}).WithError(err).Warn("content cache: rebuild failed, using prior payload")
		}
		fresh = nil
	}

	payload, supplemented := s.policyFor(key).Apply(fresh, prior)
	s.observer.Rebuilt(len(payload), supplemented)
	if len(payload) == 0 {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"subject_key": key}).Debug("content cache: empty rebuild not persisted")
		}
		return &rebuildResult{payload: payload}
	}

	entry := &contentcache.Entry{
		SubjectKey: key,
		Signature:  signature,
		Payload:    payload,
		UpdatedAt:  s.now(),
	}
	res := &rebuildResult{payload: payload}
	// Invalidated while fn ran: the payload predates the invalidation and
	// is handed to the waiting callers only.
	if s.memory.generation(key) != gen {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"subject_key": key}).Debug("content cache: invalidated during rebuild, result not stored")
		}
		return res
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		res.storageErr = s.storageFailure("write", key, err)
	}
	if !s.memory.publish(entry, gen) {
		// Invalidate raced the durable write; put the mark back.
		if err := s.repo.MarkInvalidated(ctx, key); err != nil && res.storageErr == nil {
			res.storageErr = s.storageFailure("invalidate", key, err)
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"subject_key":  key,
			"items":        len(payload),
			"fresh":        len(fresh),
			"supplemented": supplemented,
		}).Debug("content cache: rebuilt")
	}
	return res
}

func (s *ContentCacheService) policyFor(key string) contentcache.MergePolicy {
	if p, ok := s.keyPolicies[key]; ok {
		return p
	}
	return s.policy
}

func (s *ContentCacheService) storageFailure(op, key string, err error) error {
	s.observer.StorageFailure(op)
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"subject_key": key, "op": op}).WithError(err).Error("content cache: durable tier failure")
	}
	return &contentcache.StorageError{Op: op, SubjectKey: key, Err: err}
}

// priorPayload picks the payload used to top up a thin rebuild. Staleness
// does not matter here.
func priorPayload(local, durable *contentcache.Entry) []catalog.Item {
	if local != nil && len(local.Payload) > 0 {
		return local.Payload
	}
	if durable != nil {
		return durable.Payload
	}
	return nil
}

func flightKey(key string, gen uint64, signature []string) string {
	return key + "\x00" + strconv.FormatUint(gen, 10) + "\x00" + strings.Join(signature, "\x1f")
}

type noopObserver struct{}

func (noopObserver) Hit(string)            {}
func (noopObserver) Miss()                 {}
func (noopObserver) Rebuilt(int, bool)     {}
func (noopObserver) StorageFailure(string) {}
