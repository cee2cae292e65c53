package normalize

// DefaultBoilerplate is the stock pattern list for scraped feed pages:
// player error banners, footer navigation, reply-expander labels.
var DefaultBoilerplate = []string{
	`Sorry, we're having trouble playing this video\.?`,
	`Learn more`,
	`Original audio`,
	`View all [0-9]+ replies`,
	`View replies`,
	`See translation`,
	`Hide all replies`,
	`Meta.*`,
	`Privacy.*`,
	`Terms.*`,
	`Instagram Lite.*`,
	`Threads.*`,
	`Follow [A-Za-z0-9_.]+`,
}

// DefaultCutMarkers mark where a post page's own content ends and
// trailing page furniture begins. Truncate cuts at the first of these.
var DefaultCutMarkers = []string{
	"More posts from",
	"About Blog Jobs Help",
	"Instagram from",
	"Uploading & Non-Users",
	"Privacy Terms",
	"Meta ©",
}

// DefaultMaxPromptLen caps text handed to downstream classification.
const DefaultMaxPromptLen = 4000
