package homepage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dwatson/storefront/internal/domain"
	"github.com/dwatson/storefront/internal/tmpl"
)

// sectionLister is the slice of the section store the renderer needs.
type sectionLister interface {
	ListRenderable(ctx context.Context) ([]*domain.Section, error)
}

// Renderer drives the homepage pipeline: list eligible sections, resolve
// order, then per section load the template, resolve data, render, and
// post-process. Each section is fault-isolated; only the initial section list
// fetch is unrecoverable.
type Renderer struct {
	sections sectionLister
	resolver *Resolver
	loader   *tmpl.Loader
	cache    *RenderCache
	logger   *slog.Logger
}

// NewRenderer creates a homepage renderer. cache may be nil to disable the
// rendered-page cache.
func NewRenderer(sections sectionLister, resolver *Resolver, loader *tmpl.Loader, cache *RenderCache, logger *slog.Logger) *Renderer {
	return &Renderer{
		sections: sections,
		resolver: resolver,
		loader:   loader,
		cache:    cache,
		logger:   logger,
	}
}

// Render assembles the homepage section area HTML. Sections render
// sequentially so output order always equals logical order.
func (r *Renderer) Render(ctx context.Context) (string, error) {
	if r.cache != nil {
		if cached, ok, err := r.cache.Get(ctx); err != nil {
			r.logger.WarnContext(ctx, "homepage cache read failed", slog.String("error", err.Error()))
		} else if ok {
			return cached, nil
		}
	}

	start := time.Now()

	sections, err := r.sections.ListRenderable(ctx)
	if err != nil {
		// The one unrecoverable failure: without the section list there is
		// nothing to render.
		return "", fmt.Errorf("list renderable sections: %w", err)
	}

	result := ResolveOrder(sections)
	if len(result.Unresolved) > 0 {
		unresolvedPlacementsTotal.Add(float64(len(result.Unresolved)))
		r.logger.WarnContext(ctx, "unresolved section placements appended at end",
			slog.Any("section_ids", result.Unresolved),
			slog.Int("iterations", result.Iterations),
		)
	}

	var sb strings.Builder
	for _, section := range result.Sections {
		if fragment, ok := r.renderSection(ctx, section); ok {
			sb.WriteString(fragment)
			sb.WriteString("\n")
			sectionsRenderedTotal.Inc()
		}
	}

	out := sb.String()
	renderDuration.Observe(time.Since(start).Seconds())

	if r.cache != nil {
		if err := r.cache.Set(ctx, out); err != nil {
			r.logger.WarnContext(ctx, "homepage cache write failed", slog.String("error", err.Error()))
		}
	}

	return out, nil
}

// renderSection runs one section's template+data pipeline. Failures are
// logged and counted, never propagated; the page continues without the
// section.
func (r *Renderer) renderSection(ctx context.Context, section *domain.Section) (fragment string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.skip(ctx, section, skipReasonPanic, fmt.Sprintf("%v", rec))
			fragment, ok = "", false
		}
	}()

	templateName, found := TemplateName(section.Type)
	if !found {
		r.skip(ctx, section, skipReasonUnknownTemplate, "")
		return "", false
	}

	template, err := r.loader.Get(ctx, templateName)
	if err != nil {
		r.skip(ctx, section, skipReasonTemplateLoad, err.Error())
		return "", false
	}

	data, err := r.resolver.Resolve(ctx, section)
	if err != nil {
		r.skip(ctx, section, skipReasonResolveError, err.Error())
		return "", false
	}
	if data == nil {
		r.skip(ctx, section, skipReasonNoData, "")
		return "", false
	}

	rendered := template.Render(data)
	return postProcess(section, rendered), true
}

func (r *Renderer) skip(ctx context.Context, section *domain.Section, reason, detail string) {
	sectionsSkippedTotal.WithLabelValues(reason).Inc()

	attrs := []any{
		slog.String("section_id", section.ID),
		slog.String("section_name", section.Name),
		slog.String("type", section.Type),
		slog.String("reason", reason),
	}
	if detail != "" {
		attrs = append(attrs, slog.String("detail", detail))
	}
	r.logger.WarnContext(ctx, "section skipped", attrs...)
}
