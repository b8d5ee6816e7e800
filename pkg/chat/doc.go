// Package chat runs decision-tree conversations.
//
// A Widget walks a decisiontree.Tree one option at a time and records the
// transcript. Picking an option appends the user's choice right away; when the
// option leads to another node the bot's next question arrives after a short
// simulated typing delay. While the delay is pending the widget is busy and
// rejects further selections with ErrBusy, so rapid clicks never duplicate
// transcript entries. Reset and Close cancel the pending delay; nothing is
// appended after either returns.
//
//	w := chat.New(tree, chat.WithLocale("yo"), chat.WithTypingDelay(700*time.Millisecond))
//	_ = w.Start(tree.RootID())
//	_ = w.SelectOption("A")
//
// Sessions keeps one Widget per visitor in an idle-expiring cache and fans
// widget events out to subscribers such as WebSocket connections.
package chat
