// Package jsonfile loads the shop knowledge corpus and the synonym
// dictionary from JSON files, and watches the corpus file for edits.
//
// The corpus file follows the knowledge export layout:
//
//	{
//	  "shops":   {"<id>": {...shop...}},
//	  "menus":   {"<id>": {"shop_id": <id>, ...}}  or  [ {...}, ... ],
//	  "reviews": [ {...}, ... ],
//	  "coupons": {"<id>": {...}}  or  [ {...}, ... ]
//	}
//
// Identifiers may be JSON numbers or strings. Menus may also be nested
// inside their shop under "menus".
package jsonfile
