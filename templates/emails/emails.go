// Package emails holds the transactional email templates. Each message has an
// .html variant rendered with html/template and a .txt variant rendered with text/template.
package emails

import "embed"

//go:embed *.html *.txt
var FS embed.FS
