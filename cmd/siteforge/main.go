// Command siteforge runs a demo admin panel with header, footer, and
// contact section editors. Site branding and credentials come from
// environment variables.
package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/a-h/templ"

	"github.com/eringen/siteforge"
)

func main() {
	app := siteforge.New(siteforge.Config{
		Name:          siteforge.EnvOr("SITE_NAME", "Demo Site"),
		URL:           siteforge.EnvOr("SITE_URL", "http://localhost:3000"),
		Addr:          siteforge.EnvOr("ADDR", ":3000"),
		DatabasePath:  siteforge.EnvOr("DATABASE_PATH", "data/sections.db"),
		AdminPassword: siteforge.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: siteforge.MustEnv("SESSION_SECRET"),
	})

	app.Register(headerSection())
	app.Register(footerSection())
	app.Register(contactSection())

	defer app.Close()
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func headerSection() siteforge.Section {
	return siteforge.Section{
		Key:   "header",
		Title: "Header",
		Type:  "header",
		Initial: siteforge.Document{
			"logo": map[string]any{"text": "Demo Site", "image": ""},
			"mainMenu": []any{
				map[string]any{"_id": "home", "name": "Home", "link": "/", "order": 0},
			},
			"showSearch": true,
			"background": "#ffffff",
		},
		Sidebar: func(doc siteforge.Document, csrf string) templ.Component {
			return siteforge.FieldGroup("Header",
				siteforge.TextField("Logo text", siteforge.GetString(doc, "logo.text"), "logo.text"),
				siteforge.ImageField("Logo image", siteforge.GetString(doc, "logo.image"), "logo.image", false),
				siteforge.CheckboxField("Show search", siteforge.GetBool(doc, "showSearch"), "showSearch"),
				siteforge.ColorField("Background", siteforge.GetString(doc, "background"), "background"),
			)
		},
		Preview: headerPreview,
	}
}

func footerSection() siteforge.Section {
	return siteforge.Section{
		Key:   "footer",
		Title: "Footer",
		Type:  "footer",
		Initial: siteforge.Document{
			"copyright": "© Demo Site",
			"columns":   []any{},
			"socials":   []any{},
		},
		Sidebar: func(doc siteforge.Document, csrf string) templ.Component {
			return siteforge.FieldGroup("Footer",
				siteforge.TextField("Copyright", siteforge.GetString(doc, "copyright"), "copyright"),
				siteforge.LinkField("Instagram", siteforge.GetString(doc, "instagram"), "instagram"),
			)
		},
		Preview: footerPreview,
	}
}

func contactSection() siteforge.Section {
	return siteforge.Section{
		Key:   "contact",
		Title: "Contact",
		Type:  "contact",
		Initial: siteforge.Document{
			"title":     "Get in touch",
			"email":     "hello@example.com",
			"showEmail": true,
		},
		Sidebar: func(doc siteforge.Document, csrf string) templ.Component {
			return siteforge.FieldGroup("Contact",
				siteforge.TextField("Title", siteforge.GetString(doc, "title"), "title"),
				siteforge.TextField("Email", siteforge.GetString(doc, "email"), "email"),
				siteforge.CheckboxField("Show email", siteforge.GetBool(doc, "showEmail"), "showEmail"),
			)
		},
		Preview: contactPreview,
	}
}

func headerPreview(doc siteforge.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<header style="background:%s;padding:1rem;display:flex;gap:1rem"><strong>%s</strong></header>`,
			templ.EscapeString(siteforge.GetString(doc, "background")),
			templ.EscapeString(siteforge.GetString(doc, "logo.text")))
		return err
	})
}

func footerPreview(doc siteforge.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<footer style="padding:1rem"><small>%s</small></footer>`,
			templ.EscapeString(siteforge.GetString(doc, "copyright")))
		return err
	})
}

func contactPreview(doc siteforge.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		email := ""
		if siteforge.GetBool(doc, "showEmail") {
			email = siteforge.GetString(doc, "email")
		}
		_, err := fmt.Fprintf(w, `<section style="padding:1rem"><h2>%s</h2><p>%s</p></section>`,
			templ.EscapeString(siteforge.GetString(doc, "title")),
			templ.EscapeString(email))
		return err
	})
}
