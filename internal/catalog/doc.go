// Package catalog holds the static list of chat agents the hub can talk to.
//
// # Overview
//
// The catalog is read-only input: a list of categories and a list of agents,
// each bound to a fixed Toolhouse endpoint. A built-in catalog is embedded in
// the binary; a YAML file with the same shape can replace it:
//
//	categories: ["Productivity", "Career"]
//	agents:
//	  - id: inbox-zero
//	    name: Inbox Zero
//	    description: Drafts replies to your backlog
//	    category: Productivity
//	    color: "#00f0ff"
//	    icon: Mail
//	    endpoint: https://agents.toolhouse.ai/00000000-0000-0000-0000-000000000000
//	    featured: true
//	    suggestions:
//	      - Summarise my unread mail
//
// # Queries
//
//   - List / Featured: every agent, or only featured ones, in file order
//   - Categories: the declared categories, prefixed by "All"
//   - Filter: category ("All" or empty matches any) and case-insensitive text
//     search over name and description
//   - Find: lookup by id, ErrNotFound when absent
package catalog
