package notify

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

const digestTemplate = `<html>
<body style="background-color: #f4f6f8; padding: 20px; font-family: sans-serif;">
  <div style="max-width: 600px; margin: 0 auto;">
    <h2 style="text-align: center; color: #2c3e50;">JobSniper Daily Brief</h2>
    <p style="text-align: center; color: #7f8c8d;">Found <strong>{{len .Postings}}</strong> new matches for you today.</p>
    {{range .Postings}}
    <div style="margin-bottom: 25px; padding: 20px; border: 1px solid #e0e0e0; border-radius: 12px; background-color: #ffffff;">
      <div style="border-bottom: 1px solid #f0f0f0; padding-bottom: 10px; margin-bottom: 10px;">
        <h2 style="margin: 0; color: #2c3e50; font-size: 20px;">{{.Title}}</h2>
        <p style="margin: 5px 0; color: #7f8c8d; font-size: 16px;"><strong>{{.Company}}</strong></p>
      </div>
      <div style="margin-bottom: 15px; font-size: 14px;">
        <span style="background-color: #e8f6f3; color: #16a085; padding: 5px 10px; border-radius: 5px;">{{.WorkMode}}</span>
        <span style="background-color: #fef9e7; color: #b7950b; padding: 5px 10px; border-radius: 5px;">{{.Duration}}</span>
        <span style="background-color: {{scoreColor .RelevanceScore}}; color: white; padding: 5px 10px; border-radius: 5px; font-weight: bold;">Score: {{.RelevanceScore}}/100</span>
      </div>
      <div style="background-color: #f9f9f9; padding: 15px; border-radius: 8px; margin-bottom: 15px; color: #444; line-height: 1.5;">
        <strong>Why this matches:</strong><br>
        {{.MatchReason}}
      </div>
      <div style="text-align: right;">
        <a href="{{.URL}}" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 6px; font-weight: bold; font-size: 14px;">Apply Now</a>
      </div>
    </div>
    {{end}}
    <hr style="border: 0; border-top: 1px solid #ddd; margin-top: 30px;">
    <p style="text-align: center; font-size: 12px; color: #999;">Generated by JobSniper</p>
  </div>
</body>
</html>`

var digestTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"scoreColor": scoreColor,
}).Parse(digestTemplate))

// scoreColor picks the badge color for a relevance score: green for strong
// matches, orange otherwise.
func scoreColor(score int) template.CSS {
	if score > 75 {
		return "#27ae60"
	}
	return "#d35400"
}

// RenderDigest renders the HTML digest body for a batch of postings.
func RenderDigest(postings []model.VerifiedPosting) (string, error) {
	var b strings.Builder
	data := struct{ Postings []model.VerifiedPosting }{Postings: postings}
	if err := digestTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering digest: %w", err)
	}
	return b.String(), nil
}

// DigestSubject builds the subject line for a digest of n postings.
func DigestSubject(n int) string {
	return fmt.Sprintf("JobSniper: %d New Matches", n)
}
