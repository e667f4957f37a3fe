package homepage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dwatson/storefront/internal/domain"
)

func TestPostProcessBannerAnchorWrap(t *testing.T) {
	s := section(domain.SectionTypeBannerFullWidth, `{"imageUrl":"b.jpg","link":"/sale"}`)

	out := postProcess(s, `<div class="banner"><img src="b.jpg" alt="Sale"></div>`)

	assert.Contains(t, out, `<a href="/sale">`)
	assert.Contains(t, out, `<img src="b.jpg" alt="Sale"`)
	// The anchor wraps the image inside the banner container.
	assert.Regexp(t, `<div class="banner"><a href="/sale"><img`, out)
}

func TestPostProcessBannerHidesEmptyImage(t *testing.T) {
	s := section(domain.SectionTypeBannerFullWidth, `{"imageUrl":""}`)

	out := postProcess(s, `<div class="banner"><img src=""></div>`)

	// Hidden, not removed.
	assert.Contains(t, out, "<img")
	assert.Contains(t, out, "display:none")
}

func TestPostProcessBannerCustomSizing(t *testing.T) {
	s := section(domain.SectionTypeBannerFullWidth, `{
		"imageUrl":"b.jpg",
		"sizingMode":"custom",
		"maxWidth":"1200px",
		"desktopHeight":"400px",
		"tabletHeight":"300px",
		"mobileHeight":"200px"
	}`)

	out := postProcess(s, `<div class="banner"><img src="b.jpg"></div>`)

	assert.Contains(t, out, "max-width:1200px")
	assert.Contains(t, out, "--banner-height-desktop:400px")
	assert.Contains(t, out, "--banner-height-tablet:300px")
	assert.Contains(t, out, "--banner-height-mobile:200px")
	assert.Contains(t, out, "height:var(--banner-height-desktop)")
}

func TestPostProcessBannerDefaultSizingUntouched(t *testing.T) {
	s := section(domain.SectionTypeBannerFullWidth, `{"imageUrl":"b.jpg"}`)

	in := `<div class="banner"><img src="b.jpg"/></div>`
	out := postProcess(s, in)

	assert.NotContains(t, out, "style=")
	assert.NotContains(t, out, "<a ")
}

func TestPostProcessHeroSliderAutoplayAttributes(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s := section(domain.SectionTypeHeroSlider, `{}`)
		out := postProcess(s, `<div class="hero-slider"></div>`)
		assert.Contains(t, out, `data-autoplay="true"`)
		assert.Contains(t, out, `data-autoplay-interval="3000"`)
	})

	t.Run("configured", func(t *testing.T) {
		s := section(domain.SectionTypeHeroSlider, `{"autoplay":false,"autoplayInterval":5000}`)
		out := postProcess(s, `<div class="hero-slider"></div>`)
		assert.Contains(t, out, `data-autoplay="false"`)
		assert.Contains(t, out, `data-autoplay-interval="5000"`)
	})
}

func TestPostProcessNewsletterColors(t *testing.T) {
	s := section(domain.SectionTypeNewsletterSocial, `{"backgroundColor":"#001","textColor":"#fff"}`)

	out := postProcess(s, `<section class="newsletter"><h3>Join</h3></section>`)

	assert.Contains(t, out, "background-color:#001")
	assert.Contains(t, out, "color:#fff")
}

func TestPostProcessNewsletterMergesExistingStyle(t *testing.T) {
	s := section(domain.SectionTypeNewsletterSocial, `{"backgroundColor":"#001"}`)

	out := postProcess(s, `<section style="padding:4px;"><h3>Join</h3></section>`)

	assert.Contains(t, out, "padding:4px;background-color:#001")
}

func TestPostProcessPassThroughTypes(t *testing.T) {
	s := section(domain.SectionTypeScrollingText, `{}`)
	in := `<div class="announce"><span>hello</span></div>`

	assert.Equal(t, in, postProcess(s, in))
}

func TestPostProcessMalformedConfig(t *testing.T) {
	s := section(domain.SectionTypeBannerFullWidth, `{`)
	s.Config = json.RawMessage(`{`)

	assert.NotPanics(t, func() {
		postProcess(s, `<div><img src="x.jpg"></div>`)
	})
}
