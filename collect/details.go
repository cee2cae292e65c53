package collect

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/glane/content"
)

// expansion selectors for the buttons that reveal hidden comments.
var expandLabels = []string{
	"View all comments",
	"View more comments",
	"View all",
	"View replies",
	"More comments",
	"See more",
}

// PageDetails resolves candidates by opening each post page in the
// session's single tab. Calls are serialized internally: the harvest
// worker pool may call concurrently, but one tab navigates one page at
// a time.
type PageDetails struct {
	sess   *Session
	cycles int
	logger *slog.Logger
	mu     sync.Mutex
}

// NewPageDetails creates a detail fetcher over an open session.
// cycles bounds comment-expansion passes; zero uses the session
// default.
func NewPageDetails(sess *Session, cycles int, logger *slog.Logger) *PageDetails {
	if cycles <= 0 {
		cycles = sess.cfg.ExpandCycles
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PageDetails{sess: sess, cycles: cycles, logger: logger}
}

// FetchDetails opens the post page and extracts its raw fields.
func (d *PageDetails) FetchDetails(ctx context.Context, ref content.CandidateRef) (*content.RawFields, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logger.Debug("collect: opening post", "url", ref.ID)
	if err := d.sess.navigate(ctx, ref.ID); err != nil {
		return nil, err
	}
	if err := pause(ctx, d.sess.cfg.SettleDelay); err != nil {
		return nil, err
	}

	d.expandComments(ctx)

	raw := &content.RawFields{URL: ref.ID}
	raw.Timestamp = d.timestamp(ctx)
	raw.Text = d.articleText(ctx)
	raw.AudioName = d.audioName(ctx)

	body := d.bodyText(ctx)
	raw.LikesText = likesText(body)
	raw.CommText = commentsText(body)

	return raw, nil
}

// expandComments clicks expansion buttons until a full pass finds
// none, bounded by the cycle budget.
func (d *PageDetails) expandComments(ctx context.Context) {
	page := d.sess.page.Context(ctx)
	for i := 0; i < d.cycles; i++ {
		found := false
		for _, label := range expandLabels {
			el, err := page.Timeout(time.Second).ElementR("span, button, div[role='button']", label)
			if err != nil {
				continue
			}
			if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
				continue
			}
			found = true
			if err := pause(ctx, time.Second); err != nil {
				return
			}
		}
		if !found {
			return
		}
	}
}

func (d *PageDetails) timestamp(ctx context.Context) string {
	el, err := d.sess.page.Context(ctx).Timeout(5 * time.Second).Element("time")
	if err != nil {
		return ""
	}
	ts, err := el.Attribute("datetime")
	if err != nil || ts == nil {
		return ""
	}
	return *ts
}

// articleText reads the post article's text, falling back to the whole
// body when no article element is present.
func (d *PageDetails) articleText(ctx context.Context) string {
	res, err := d.sess.page.Context(ctx).Eval(`() => {
		const a = document.querySelector('article');
		return a ? a.innerText : document.body.innerText;
	}`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (d *PageDetails) bodyText(ctx context.Context) string {
	res, err := d.sess.page.Context(ctx).Eval(`() => document.body.innerText`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (d *PageDetails) audioName(ctx context.Context) string {
	el, err := d.sess.page.Context(ctx).Timeout(2 * time.Second).Element("a[href*='/audio/']")
	if err != nil {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return text
}
