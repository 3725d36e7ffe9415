package spotify

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/osa030/plcopy/internal/domain/failure"
	"github.com/osa030/plcopy/internal/domain/playlist"
	"github.com/osa030/plcopy/internal/domain/track"
)

// DefaultPageSize is the Spotify maximum for playlist items.
const DefaultPageSize = 100

// maxTotal bounds the server-reported item count, far above the Spotify playlist limit.
const maxTotal = 1 << 20

// Page is one page of playlist items.
type Page struct {
	Total int           // Server-reported item count of the whole playlist
	Items []track.Track // Items in page order
}

// PageSource fetches a single page of playlist items.
// Implementations differ only in how they talk HTTP; the paging loop is shared.
type PageSource interface {
	Page(ctx context.Context, tok *oauth2.Token, ref playlist.Reference, offset, limit int) (*Page, error)
	// Name returns the backend name (used in config).
	Name() string
}

// FetchOptions represents paging behaviour.
type FetchOptions struct {
	PageSize          int
	TightBound        bool // stop at offset < total instead of offset <= total
	Concurrency       int  // pages fetched in parallel once total is known
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64 // 0 means unlimited
}

// Fetcher retrieves complete playlists from a PageSource.
type Fetcher struct {
	source  PageSource
	opts    FetchOptions
	retry   retrier
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher.
func NewFetcher(source PageSource, opts FetchOptions) *Fetcher {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Fetcher{
		source:  source,
		opts:    opts,
		retry:   retrier{maxRetries: opts.MaxRetries, retryDelay: opts.RetryDelay},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// FetchAll retrieves every item of the playlist.
//
// The first page (offset 0) fixes total. Further pages are requested while
// offset <= total, so a trailing empty page is requested when total is a
// multiple of the page size; TightBound drops that request. Any failed page,
// a total that changes between pages, or an item count that does not add up
// to total aborts with [failure.ErrRetrieval] and no collection.
func (f *Fetcher) FetchAll(ctx context.Context, tok *oauth2.Token, ref playlist.Reference) (track.Collection, error) {
	first, err := f.page(ctx, tok, ref, 0)
	if err != nil {
		return nil, err
	}
	total := first.Total
	if total < 0 || total > maxTotal {
		return nil, failure.Markf(failure.ErrRetrieval, "implausible playlist total: %d", total)
	}

	var offsets []int
	for offset := f.opts.PageSize; f.more(offset, total); offset += f.opts.PageSize {
		offsets = append(offsets, offset)
	}

	zlog.Info().Msgf("retrieving playlist: id=%s total=%d pages=%d backend=%s",
		ref.ID, total, len(offsets)+1, f.source.Name())

	pages := make([]*Page, len(offsets))
	if f.opts.Concurrency == 1 {
		for i, offset := range offsets {
			if pages[i], err = f.page(ctx, tok, ref, offset); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(f.opts.Concurrency)
		for i, offset := range offsets {
			i, offset := i, offset
			g.Go(func() error {
				p, err := f.page(gctx, tok, ref, offset)
				if err != nil {
					return err
				}
				pages[i] = p
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	size := len(first.Items)
	for i, p := range pages {
		if p.Total != total {
			return nil, failure.Markf(failure.ErrRetrieval,
				"inconsistent pagination: total changed from %d to %d at offset %d", total, p.Total, offsets[i])
		}
		size += len(p.Items)
	}

	items := make(track.Collection, 0, size)
	items = append(items, first.Items...)
	for _, p := range pages {
		items = append(items, p.Items...)
	}

	if len(items) != total {
		return nil, failure.Markf(failure.ErrRetrieval,
			"incomplete playlist: expected %d items, got %d", total, len(items))
	}

	zlog.Info().Msgf("retrieved %d tracks", len(items))
	return items, nil
}

func (f *Fetcher) more(offset, total int) bool {
	if f.opts.TightBound {
		return offset < total
	}
	return offset <= total
}

// page fetches one page with rate limiting and retry.
func (f *Fetcher) page(ctx context.Context, tok *oauth2.Token, ref playlist.Reference, offset int) (*Page, error) {
	var result *Page
	err := f.retry.do(ctx, func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
		p, err := f.source.Page(ctx, tok, ref, offset, f.opts.PageSize)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, failure.Mark(errors.Wrapf(err, "failed to get playlist page at offset %d", offset), failure.ErrRetrieval)
	}

	zlog.Debug().Msgf("page fetched: offset=%d items=%d total=%d", offset, len(result.Items), result.Total)
	return result, nil
}
