package synthesis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nikhilbhutani/ttsproxy/internal/metrics"
	"github.com/nikhilbhutani/ttsproxy/internal/tts"
)

const (
	DefaultFormat = "mp3"
	DefaultSpeed  = 1.0
	DefaultTTL    = 2 * time.Hour
)

var (
	ErrTextRequired = errors.New("text is required")
	ErrRateLimited  = errors.New("too many requests")
)

// Input is the caller's request as received. Pointer fields distinguish
// "absent" from zero.
type Input struct {
	Text    string   `json:"text"`
	Voice   string   `json:"voice,omitempty"`
	Speed   *float64 `json:"speed,omitempty"`
	Emotion *float64 `json:"emotion,omitempty"`
	Format  string   `json:"format,omitempty"`
}

// Output is the audio served for one request.
type Output struct {
	Audio  []byte
	Format string
	Cached bool
}

// ContentType is the MIME type for the requested format.
func (o *Output) ContentType() string {
	return "audio/" + o.Format
}

// Store holds synthesized audio between requests.
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte, ttl time.Duration)
	Len() int
}

// Limiter gates upstream synthesis per client.
type Limiter interface {
	Allow(client string) bool
}

type Options struct {
	CacheTTL time.Duration
	// LimitCacheHits runs the limiter before the cache lookup, so cached
	// audio counts against the client's window too.
	LimitCacheHits bool
}

// Service runs the generate-audio pipeline: validate, look up the cache,
// admit through the limiter, synthesize upstream and store the result.
type Service struct {
	provider tts.Provider
	store    Store
	limiter  Limiter
	metrics  *metrics.Metrics
	opts     Options
	group    singleflight.Group
}

func NewService(provider tts.Provider, store Store, limiter Limiter, m *metrics.Metrics, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultTTL
	}
	return &Service{
		provider: provider,
		store:    store,
		limiter:  limiter,
		metrics:  m,
		opts:     opts,
	}
}

// Resolve fills in defaults so that an omitted field and its explicit
// default produce the same cache key.
func (s *Service) Resolve(in Input) tts.Request {
	req := tts.Request{
		Text:    in.Text,
		Voice:   in.Voice,
		Speed:   DefaultSpeed,
		Emotion: in.Emotion,
		Format:  in.Format,
	}
	if req.Voice == "" {
		req.Voice = s.provider.DefaultVoice()
	}
	if in.Speed != nil {
		req.Speed = *in.Speed
	}
	if req.Format == "" {
		req.Format = DefaultFormat
	}
	return req
}

// Generate returns audio for in. Errors are ErrTextRequired, ErrRateLimited
// or an *tts.UpstreamError.
func (s *Service) Generate(ctx context.Context, clientID string, in Input) (*Output, error) {
	if in.Text == "" {
		return nil, ErrTextRequired
	}
	req := s.Resolve(in)

	if s.opts.LimitCacheHits && !s.admit(clientID) {
		return nil, ErrRateLimited
	}

	key := Key(req)
	if audio, ok := s.store.Get(key); ok {
		s.metrics.CacheLookup(true)
		slog.Info("Serving from cache", "client", clientID, "voice", req.Voice, "format", req.Format)
		return &Output{Audio: audio, Format: req.Format, Cached: true}, nil
	}
	s.metrics.CacheLookup(false)

	if !s.opts.LimitCacheHits && !s.admit(clientID) {
		return nil, ErrRateLimited
	}

	// Identical concurrent misses share one upstream call. The call is
	// detached from the first caller's cancellation and bounded by the
	// provider's timeout instead.
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.synthesize(context.WithoutCancel(ctx), key, req)
	})
	if err != nil {
		slog.Error("audio generation failed", "client", clientID, "provider", s.provider.Name(), "error", err)
		return nil, err
	}
	if shared {
		slog.Debug("shared in-flight synthesis", "client", clientID)
	}
	return &Output{Audio: v.([]byte), Format: req.Format}, nil
}

func (s *Service) synthesize(ctx context.Context, key string, req tts.Request) ([]byte, error) {
	start := time.Now()
	res, err := s.provider.Synthesize(ctx, req)
	s.metrics.ObserveUpstream(s.provider.Name(), err, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.store.Put(key, res.Audio, s.opts.CacheTTL)
	s.metrics.SetCacheEntries(s.store.Len())
	slog.Info("Audio generated and cached", "provider", s.provider.Name(), "bytes", len(res.Audio))
	return res.Audio, nil
}

func (s *Service) admit(clientID string) bool {
	if s.limiter.Allow(clientID) {
		return true
	}
	s.metrics.RateLimited()
	slog.Warn("rate limit exceeded", "client", clientID)
	return false
}
