package homepage

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dwatson/storefront/internal/domain"
)

// postProcess applies the presentational fixups the template language cannot
// express. It operates on the rendered fragment of a single section; types
// without fixups pass through unchanged.
func postProcess(section *domain.Section, rendered string) string {
	switch section.Type {
	case domain.SectionTypeBannerFullWidth:
		return postProcessBanner(rendered, decodeConfig[BannerConfig](section.Config))
	case domain.SectionTypeHeroSlider:
		return postProcessHeroSlider(rendered, decodeConfig[HeroSliderConfig](section.Config))
	case domain.SectionTypeNewsletterSocial:
		return postProcessNewsletter(rendered, decodeConfig[NewsletterConfig](section.Config))
	default:
		return rendered
	}
}

// postProcessBanner wraps the banner image in an anchor when a link is
// configured, hides (not removes) the image when its URL is empty, and applies
// custom sizing as inline style properties.
func postProcessBanner(rendered string, cfg BannerConfig) string {
	nodes, err := parseFragment(rendered)
	if err != nil {
		return rendered
	}

	root := firstElement(nodes)
	if root == nil {
		return rendered
	}

	if img := findElement(root, atom.Img); img != nil {
		if cfg.ImageURL == "" {
			appendStyle(img, "display:none")
		}
		if cfg.Link != "" && (img.Parent == nil || img.Parent.DataAtom != atom.A) {
			wrapInAnchor(img, cfg.Link)
		}
		if cfg.SizingMode == "custom" {
			appendStyle(img, "height:var(--banner-height-desktop)")
		}
	}

	if cfg.SizingMode == "custom" {
		var props []string
		if cfg.MaxWidth != "" {
			props = append(props, "max-width:"+cfg.MaxWidth)
		}
		if cfg.DesktopHeight != "" {
			props = append(props, "--banner-height-desktop:"+cfg.DesktopHeight)
		}
		if cfg.TabletHeight != "" {
			props = append(props, "--banner-height-tablet:"+cfg.TabletHeight)
		}
		if cfg.MobileHeight != "" {
			props = append(props, "--banner-height-mobile:"+cfg.MobileHeight)
		}
		if len(props) > 0 {
			appendStyle(root, strings.Join(props, ";"))
		}
	}

	return renderFragment(nodes)
}

// postProcessHeroSlider stamps the autoplay contract onto the slider root as
// data attributes; the client runtime reads them.
func postProcessHeroSlider(rendered string, cfg HeroSliderConfig) string {
	nodes, err := parseFragment(rendered)
	if err != nil {
		return rendered
	}

	root := firstElement(nodes)
	if root == nil {
		return rendered
	}

	setAttr(root, "data-autoplay", strconv.FormatBool(cfg.AutoplayEnabled()))
	setAttr(root, "data-autoplay-interval", strconv.Itoa(cfg.Interval()))

	return renderFragment(nodes)
}

// postProcessNewsletter applies the configured background and text colors to
// the section root.
func postProcessNewsletter(rendered string, cfg NewsletterConfig) string {
	if cfg.BackgroundColor == "" && cfg.TextColor == "" {
		return rendered
	}

	nodes, err := parseFragment(rendered)
	if err != nil {
		return rendered
	}

	root := firstElement(nodes)
	if root == nil {
		return rendered
	}

	var props []string
	if cfg.BackgroundColor != "" {
		props = append(props, "background-color:"+cfg.BackgroundColor)
	}
	if cfg.TextColor != "" {
		props = append(props, "color:"+cfg.TextColor)
	}
	appendStyle(root, strings.Join(props, ";"))

	return renderFragment(nodes)
}

func parseFragment(s string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	return html.ParseFragment(strings.NewReader(s), ctx)
}

func renderFragment(nodes []*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		_ = html.Render(&sb, n)
	}
	return sb.String()
}

func firstElement(nodes []*html.Node) *html.Node {
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n
		}
	}
	return nil
}

// findElement returns the first descendant (or the node itself) matching tag.
func findElement(n *html.Node, tag atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// appendStyle merges extra declarations into the node's style attribute.
func appendStyle(n *html.Node, style string) {
	existing := strings.TrimRight(strings.TrimSpace(getAttr(n, "style")), ";")
	if existing != "" {
		style = existing + ";" + style
	}
	setAttr(n, "style", style)
}

// wrapInAnchor replaces img in its parent with <a href=link><img></a>.
func wrapInAnchor(img *html.Node, link string) {
	parent := img.Parent
	if parent == nil {
		return
	}

	anchor := &html.Node{
		Type:     html.ElementNode,
		Data:     "a",
		DataAtom: atom.A,
		Attr:     []html.Attribute{{Key: "href", Val: link}},
	}

	parent.InsertBefore(anchor, img)
	parent.RemoveChild(img)
	anchor.AppendChild(img)
}
