package views

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/malariainfo/pkg/chat"
)

// Chat renders the assistant. Without scripts it works through plain form
// posts; chatScript upgrades it to the JSON API and the WebSocket stream.
func Chat(m Meta, s chat.Snapshot) templ.Component {
	title := m.T("chat.title")
	body := component(func(h *html) {
		h.raw(`<section id="chat" class="chat"`)
		h.attr("data-session", s.ID)
		h.attr("data-state", string(s.State))
		h.attr("data-typing", m.T("chat.typing"))
		h.attr("data-busy", m.T("chat.busy"))
		h.raw(">")
		h.tag("h1", title)
		h.tag("p", m.T("chat.intro"))

		h.raw(`<ol class="transcript" aria-live="polite">`)
		for _, msg := range s.Messages {
			h.raw(`<li`)
			h.attr("class", string(msg.Sender))
			h.attr("lang", msg.Locale)
			h.raw(">")
			h.text(msg.Text)
			h.raw(`</li>`)
		}
		h.raw(`</ol>`)

		switch s.State {
		case chat.StateTyping:
			h.raw(`<p class="typing">`)
			h.text(m.T("chat.typing"))
			h.raw(`</p><noscript><meta http-equiv="refresh" content="1"></noscript>`)
		case chat.StateTerminal:
			h.raw(`<p class="ended">`)
			h.text(m.T("chat.ended"))
			h.raw(`</p>`)
		}

		h.raw(`<form method="post" class="choices"`)
		h.attr("action", m.URL("/chat/select"))
		h.raw(">")
		for _, c := range s.Choices {
			h.raw(`<button type="submit" name="option"`)
			h.attr("value", c.Code)
			if s.State != chat.StateActive {
				h.raw(` disabled`)
			}
			h.raw(">")
			h.text(c.Label)
			h.raw(`</button>`)
		}
		h.raw(`</form>`)

		h.raw(`<form method="post" class="reset"`)
		h.attr("action", m.URL("/chat/reset"))
		h.raw(">")
		submit(h, m.T("chat.reset"))
		h.raw(`</form></section>`)
		h.raw(chatScript)
	})
	return Layout(m, title, body)
}

const chatScript = `<script>
(() => {
  const root = document.getElementById("chat");
  if (!root || !window.WebSocket || !window.fetch) return;
  const id = root.dataset.session;
  const list = root.querySelector(".transcript");
  const choices = root.querySelector(".choices");
  const api = "/api/chat/sessions/" + encodeURIComponent(id);

  const render = (snap) => {
    root.dataset.state = snap.state;
    list.replaceChildren(...(snap.messages || []).map((m) => {
      const li = document.createElement("li");
      li.className = m.sender;
      li.lang = m.locale;
      li.textContent = m.text;
      return li;
    }));
    choices.replaceChildren(...(snap.choices || []).map((c) => {
      const b = document.createElement("button");
      b.type = "submit";
      b.name = "option";
      b.value = c.code;
      b.textContent = c.label;
      b.disabled = snap.state !== "active";
      return b;
    }));
    for (const el of root.querySelectorAll(".typing, .ended, noscript")) el.remove();
  };
  const refresh = () => fetch(api).then((r) => r.ok ? r.json() : null).then((s) => s && render(s));

  const proto = location.protocol === "https:" ? "wss://" : "ws://";
  const ws = new WebSocket(proto + location.host + "/api/chat/ws?session=" + encodeURIComponent(id));
  ws.onmessage = () => refresh();

  choices.addEventListener("submit", (e) => {
    e.preventDefault();
    const option = e.submitter && e.submitter.value;
    if (!option) return;
    fetch(api + "/select", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({option}),
    }).then(refresh);
  });
  root.querySelector(".reset").addEventListener("submit", (e) => {
    e.preventDefault();
    fetch(api + "/reset", {method: "POST"}).then(refresh);
  });
})();
</script>`
