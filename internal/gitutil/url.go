package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	prURLRegex       = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)$`)
	prShorthandRegex = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)
)

// PullRequestRef identifies a pull request on GitHub.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParsePullRequestURL accepts https://github.com/{owner}/{repo}/pull/{number}
// (scheme optional) or the {owner}/{repo}#{number} shorthand.
func ParsePullRequestURL(url string) (PullRequestRef, error) {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")

	matches := prURLRegex.FindStringSubmatch(url)
	if matches == nil {
		matches = prShorthandRegex.FindStringSubmatch(url)
	}
	if len(matches) != 4 {
		return PullRequestRef{}, fmt.Errorf("invalid pull request URL format: %s", url)
	}

	number, err := strconv.Atoi(matches[3])
	if err != nil || number <= 0 {
		return PullRequestRef{}, fmt.Errorf("invalid PR number '%s'", matches[3])
	}

	return PullRequestRef{Owner: matches[1], Repo: matches[2], Number: number}, nil
}
