// Package decisiontree holds the static question/answer tree walked by the
// malaria chat assistant.
//
// A tree is a lookup table from node id to Node. Every node asks a bilingual
// question and offers lettered options. An option either leads to another
// node (Next) or ends the conversation with a Result, taken from the
// per-option Results or, failing that, the node-level default Result.
//
// Trees are validated once when loaded: the root must exist, every next target
// must exist and every option must lead somewhere. After loading a Tree is
// immutable and safe for concurrent use.
//
// Source files are JSON or YAML objects keyed by node id:
//
//	{
//	  "start": {
//	    "question": {"en": "What do you want to know?", "yo": "Kini o fe mo?"},
//	    "options":  {"A": {"en": "Symptoms", "yo": "Awon ami aisan"}},
//	    "next":     {"A": "symptoms"}
//	  }
//	}
//
// A result is either a plain string used for every locale or an object of
// per-locale strings.
package decisiontree
