// Package rewards resolves which referral rewards a referral count unlocks.
package rewards

// Tier is one rung of the reward schedule.
type Tier struct {
	Threshold int64    `yaml:"count" json:"count"`
	Reward    string   `yaml:"reward" json:"reward"`
	Features  []string `yaml:"features,omitempty" json:"features,omitempty"`
}

// Result is the outcome of evaluating a referral count against a tier list.
type Result struct {
	Unlocked []Tier `json:"unlocked"`
	Best     *Tier  `json:"best,omitempty"`
	Next     *Tier  `json:"next,omitempty"`
	// Remaining is the number of referrals still needed to reach Next.
	Remaining int64 `json:"remaining,omitempty"`
}

// Evaluate reports the tiers unlocked by count, in table order. Best is the
// unlocked tier with the greatest threshold; on equal thresholds the later
// entry wins. Next is the first tier not yet reached.
func Evaluate(count int64, tiers []Tier) Result {
	res := Result{Unlocked: []Tier{}}
	best := -1
	for i, t := range tiers {
		if count >= t.Threshold {
			res.Unlocked = append(res.Unlocked, t)
			if best < 0 || t.Threshold >= tiers[best].Threshold {
				best = i
			}
			continue
		}
		if res.Next == nil {
			next := t
			res.Next = &next
			res.Remaining = t.Threshold - count
		}
	}
	if best >= 0 {
		b := tiers[best]
		res.Best = &b
	}
	return res
}
