// Package classify rejects postings that are not genuine job offers.
//
// Classification is binary and deterministic: an ordered list of
// (category, phrase) pairs is checked against the case-folded description,
// and the first matching phrase wins. Phrases are specific multi-word
// strings rather than single keywords — a missed scam is preferred over
// rejecting a real job.
package classify

import (
	"fmt"
	"strings"
)

// Verdict is the classifier's output for a single posting.
type Verdict struct {
	IsScam bool
	Reason string
}

// category groups related scam phrases under a reporting label.
type category struct {
	name    string
	phrases []string
}

// Categories are checked in order; within a category, phrases in order.
var scamCategories = []category{
	{
		name: "Payment/Fee Required",
		phrases: []string{
			"pay to apply", "payment upfront", "wire transfer", "send money first",
			"registration fee", "application fee", "training fee", "course fee",
			"pay for training", "deposit required", "refundable deposit",
			"guaranteed income", "quick money", "earn money fast",
			"investment required", "pay us", "payment of", "fee of",
			"charges apply", "nominal fee", "processing fee",
		},
	},
	{
		name: "Training Institute/Academy",
		phrases: []string{
			"training institute", "training academy", "coaching center",
			"coaching institute", "learning center", "skill development center",
			"certification program", "training program with placement",
			"learn and earn", "training cum internship", "paid training",
			"industrial training", "summer training", "winter training",
			"educational institute", "academy internship",
		},
	},
	{
		name: "MLM/Network Marketing",
		phrases: []string{
			"multi-level", "mlm", "network marketing", "direct selling",
			"pyramid", "referral bonus", "recruit others", "build your team",
			"unlimited earning", "be your own boss", "work from home earn",
		},
	},
	{
		name: "Suspicious Pattern",
		phrases: []string{
			"no experience needed earn", "guaranteed placement after payment",
			"pay after placement but fee first", "advance payment",
			"security deposit", "caution money", "bond amount",
			"work from home no investment but", "free training but",
			"certificate course with internship", "internship after course completion",
		},
	},
	{
		name: "Unrealistic Offer",
		phrases: []string{
			"earn lakhs", "earn thousands daily", "guaranteed salary",
			"no work high pay", "easy money", "instant income",
			"work 2 hours earn", "part time high income",
		},
	},
}

// Company strings that look like a training shop rather than an employer.
var trainingCompanyTerms = []string{
	"academy", "institute", "training", "coaching", "classes",
	"learning center", "skill development", "education center",
}

// Indicators that the company is a real business even if its name also
// contains a training term (e.g. "Acme Technologies Training Division").
var legitBusinessTerms = []string{
	"technologies", "solutions", "software", "systems", "labs",
	"pvt ltd", "limited", "corporation", "inc",
}

// Classify checks a posting's description and company string against the scam
// signatures. The company-name heuristic only fires when no phrase matched.
func Classify(description, company string) Verdict {
	text := strings.ToLower(description)

	for _, cat := range scamCategories {
		for _, phrase := range cat.phrases {
			if strings.Contains(text, phrase) {
				return Verdict{
					IsScam: true,
					Reason: fmt.Sprintf("%s: contains '%s'", cat.name, phrase),
				}
			}
		}
	}

	companyLower := strings.ToLower(company)
	if containsAny(companyLower, trainingCompanyTerms) && !containsAny(companyLower, legitBusinessTerms) {
		return Verdict{
			IsScam: true,
			Reason: "Training Institute: company appears to be a training/coaching center, not a real employer",
		}
	}

	return Verdict{}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
