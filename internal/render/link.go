package render

import (
	"html"

	"github.com/drakeos/drakeos/internal/vfs"
)

// LinkRenderer shows an external link; the client opens ExternalURL.
type LinkRenderer struct{}

func (LinkRenderer) Render(file *vfs.Node) (*View, error) {
	icon := orDefault(file.Icon, "external-link")
	description := orDefault(file.Description, "Opening external link...")
	url := orDefault(file.URL, "#")

	body := `<div class="link">` +
		`<i data-lucide="` + html.EscapeString(icon) + `" class="link-icon"></i>` +
		`<div class="link-message">` + html.EscapeString(description) + `</div>` +
		`<div class="link-url">` + html.EscapeString(url) + `</div>` +
		`<div class="link-executing">Executing...</div>` +
		`</div>`
	return &View{Kind: KindLink, HTML: body, ExternalURL: url}, nil
}

// ArchiveRenderer shows archive info only; archives are never extracted.
type ArchiveRenderer struct{}

func (ArchiveRenderer) Render(file *vfs.Node) (*View, error) {
	description := orDefault(file.Description, "Archive file")
	body := `<div class="archive-info">` +
		`<div class="archive-name">` + html.EscapeString(file.Name) + `</div>` +
		`<div class="archive-description">` + html.EscapeString(description) + `</div>` +
		`<div class="archive-note">Archive files cannot be extracted in the browser</div>` +
		`</div>`
	return &View{Kind: KindArchive, HTML: body}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
