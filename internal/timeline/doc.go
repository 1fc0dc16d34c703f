// Package timeline defines timeline items and loads them from YAML and CSV files.
//
// A timeline file is either a YAML document:
//
//	version: "1.0"
//	title: Apollo program
//	mode: alternating
//	items:
//	  - date: 1969-07-20
//	    card_title: Apollo 11
//	    card_subtitle: First crewed lunar landing
//	    detail: |
//	      Armstrong and Aldrin land in the **Sea of Tranquility**.
//
// or a CSV file whose header names the columns date, title, card_title,
// card_subtitle, detail, id, url, media_type and media_url (case-insensitive,
// any order, only date is required).
//
// Loaded items are given ULID identifiers when none is set and are sorted
// chronologically. Undated items follow the dated ones in their original order.
package timeline
