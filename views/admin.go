package views

import (
	"net/url"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/malariainfo/pkg/backend"
)

// LoginForm holds the values echoed back into the sign-in form.
type LoginForm struct {
	Email string
	Next  string
	Error string
}

// Login is the admin sign-in page.
func Login(m Meta, f LoginForm) templ.Component {
	title := m.T("admin.login.title")
	body := component(func(h *html) {
		h.tag("h1", title)
		formError(h, f.Error)
		h.raw(`<form method="post"`)
		h.attr("action", m.URL("/admin/login"))
		h.raw(">")
		if f.Next != "" {
			hidden(h, "next", f.Next)
		}
		input(h, "email", m.T("admin.login.email"), "email", f.Email, true)
		input(h, "password", m.T("admin.login.password"), "password", "", true)
		submit(h, m.T("admin.login.submit"))
		h.raw(`</form><p><a`)
		h.href(m.URL("/admin/signup"))
		h.raw(">")
		h.text(m.T("admin.login.signup_link"))
		h.raw(`</a></p>`)
	})
	return Layout(m, title, body)
}

// SignupForm holds the values echoed back into the signup form.
type SignupForm struct {
	Name  string
	Email string
	Error string
}

// Signup is the admin account creation page.
func Signup(m Meta, f SignupForm) templ.Component {
	title := m.T("admin.signup.title")
	body := component(func(h *html) {
		h.tag("h1", title)
		formError(h, f.Error)
		h.raw(`<form method="post"`)
		h.attr("action", m.URL("/admin/signup"))
		h.raw(">")
		input(h, "name", m.T("admin.signup.name"), "text", f.Name, true)
		input(h, "email", m.T("admin.login.email"), "email", f.Email, true)
		input(h, "password", m.T("admin.login.password"), "password", "", true)
		submit(h, m.T("admin.signup.submit"))
		h.raw(`</form>`)
	})
	return Layout(m, title, body)
}

// AdminDocuments lists documents with edit and delete actions and the
// upload form.
func AdminDocuments(m Meta, docs []backend.Document, failed bool, formErr string) templ.Component {
	title := m.T("admin.documents.title")
	body := component(func(h *html) {
		h.tag("h1", title)
		h.raw(`<form method="post" class="inline"`)
		h.attr("action", m.URL("/admin/logout"))
		h.raw(">")
		submit(h, m.T("admin.logout"))
		h.raw(`</form>`)

		switch {
		case failed:
			unavailable(h, m, m.URL("/admin/documents"))
		case len(docs) == 0:
			h.tag("p", m.T("admin.documents.empty"))
		default:
			h.raw(`<table><tbody>`)
			for _, d := range docs {
				base := m.URL("/admin/documents/" + url.PathEscape(d.ID))
				h.raw(`<tr><td>`)
				h.text(d.Title)
				h.raw(`</td><td>`)
				h.text(d.Language)
				h.raw(`</td><td><a`)
				h.href(base)
				h.raw(">")
				h.text(m.T("admin.documents.edit"))
				h.raw(`</a></td><td><form method="post"`)
				h.attr("action", base+"/delete")
				h.attr("data-confirm", m.T("admin.documents.confirm_delete"))
				h.raw(">")
				submit(h, m.T("admin.documents.delete"))
				h.raw(`</form></td></tr>`)
			}
			h.raw(`</tbody></table>`)
		}

		h.tag("h2", m.T("admin.documents.upload"))
		formError(h, formErr)
		h.raw(`<form method="post" enctype="multipart/form-data"`)
		h.attr("action", m.URL("/admin/documents"))
		h.raw(">")
		documentFields(h, m, backend.DocumentInput{Language: m.Locale})
		h.raw(`<label>`)
		h.text(m.T("admin.documents.file"))
		h.raw(`<input type="file" name="file" required accept=".pdf,.doc,.docx,.ppt,.pptx,.txt,image/*"></label>`)
		submit(h, m.T("admin.documents.save"))
		h.raw(`</form>`)
	})
	return Layout(m, title, body)
}

// AdminDocumentEdit is the metadata form of one document.
func AdminDocumentEdit(m Meta, d backend.Document, formErr string) templ.Component {
	title := m.T("admin.documents.edit")
	body := component(func(h *html) {
		h.tag("h1", title+": "+d.Title)
		formError(h, formErr)
		h.raw(`<form method="post"`)
		h.attr("action", m.URL("/admin/documents/"+url.PathEscape(d.ID)))
		h.raw(">")
		documentFields(h, m, backend.DocumentInput{
			Title:       d.Title,
			Description: d.Description,
			Category:    d.Category,
			Language:    d.Language,
		})
		submit(h, m.T("admin.documents.save"))
		h.raw(`</form><p><a`)
		h.href(m.URL("/admin/documents"))
		h.raw(">")
		h.text(m.T("admin.documents.back"))
		h.raw(`</a></p>`)
	})
	return Layout(m, title, body)
}

func documentFields(h *html, m Meta, in backend.DocumentInput) {
	input(h, "title", m.T("admin.documents.name"), "text", in.Title, true)
	h.raw(`<label>`)
	h.text(m.T("admin.documents.description"))
	h.raw(`<textarea name="description" rows="4">`)
	h.text(in.Description)
	h.raw(`</textarea></label>`)
	input(h, "category", m.T("admin.documents.category"), "text", in.Category, false)
	h.raw(`<label>`)
	h.text(m.T("admin.documents.language"))
	h.raw(`<select name="language">`)
	for _, l := range m.Locales {
		h.raw(`<option`)
		h.attr("value", l)
		if l == in.Language {
			h.raw(` selected`)
		}
		h.raw(">")
		h.text(m.T("languages." + l))
		h.raw(`</option>`)
	}
	h.raw(`</select></label>`)
}

func input(h *html, name, label, typ, value string, required bool) {
	h.raw(`<label>`)
	h.text(label)
	h.raw(`<input`)
	h.attr("type", typ)
	h.attr("name", name)
	if value != "" {
		h.attr("value", value)
	}
	if required {
		h.raw(` required`)
	}
	h.raw(`></label>`)
}

func hidden(h *html, name, value string) {
	h.raw(`<input type="hidden"`)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(">")
}

func submit(h *html, label string) {
	h.raw(`<button type="submit">`)
	h.text(label)
	h.raw(`</button>`)
}

func formError(h *html, msg string) {
	if msg == "" {
		return
	}
	h.raw(`<p class="error" role="alert">`)
	h.text(msg)
	h.raw(`</p>`)
}
