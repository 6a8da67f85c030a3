package domain

// ChecklistItem is one task on the customer's moving checklist.
type ChecklistItem struct {
	ID    string
	Phase string
}

// Checklist phases, in the order they are shown.
const (
	ChecklistSixWeeks   = "six_to_four_weeks_before"
	ChecklistFourWeeks  = "four_to_three_weeks_before"
	ChecklistThreeWeeks = "three_to_two_weeks_before"
	ChecklistOneWeek    = "one_week_before"
	ChecklistMovingDay  = "moving_day"
	ChecklistAfterMove  = "first_week_after"
)

var checklist = []ChecklistItem{
	{"hyreskontrakt", ChecklistSixWeeks},
	{"folkbokning", ChecklistSixWeeks},
	{"hemforsakring", ChecklistSixWeeks},
	{"barn_skola", ChecklistSixWeeks},
	{"el", ChecklistFourWeeks},
	{"internet", ChecklistFourWeeks},
	{"tv_bredband", ChecklistFourWeeks},
	{"prenumerationer", ChecklistFourWeeks},
	{"post", ChecklistThreeWeeks},
	{"bank", ChecklistThreeWeeks},
	{"borja_packa", ChecklistThreeWeeks},
	{"parkeringstillstand", ChecklistThreeWeeks},
	{"nathandel", ChecklistThreeWeeks},
	{"bekrafta_nordflytt", ChecklistOneWeek},
	{"packa_klart", ChecklistOneWeek},
	{"tomma_frysen", ChecklistOneWeek},
	{"boka_hiss", ChecklistOneWeek},
	{"betalning", ChecklistOneWeek},
	{"vara_forberedd", ChecklistMovingDay},
	{"kontaktinfo", ChecklistMovingDay},
	{"stora_mobler", ChecklistMovingDay},
	{"nycklar_koder", ChecklistMovingDay},
	{"husdjur", ChecklistMovingDay},
	{"inflyttningsbesiktning", ChecklistAfterMove},
	{"fixa_vaggar", ChecklistAfterMove},
	{"mala", ChecklistAfterMove},
	{"slutstadning", ChecklistAfterMove},
	{"avflyttningsbesiktning", ChecklistAfterMove},
	{"fa_tillbaka_deposition", ChecklistAfterMove},
	{"packa_upp", ChecklistAfterMove},
}

// ChecklistItems returns the checklist in display order.
func ChecklistItems() []ChecklistItem {
	return append([]ChecklistItem(nil), checklist...)
}

// IsChecklistItem reports whether id names a checklist task.
func IsChecklistItem(id string) bool {
	for _, item := range checklist {
		if item.ID == id {
			return true
		}
	}
	return false
}

// ChecklistProgress maps checklist task ids to whether they are done.
type ChecklistProgress map[string]bool

// ChecklistProgress reads details.checklist_progress. Unknown ids and
// non-boolean values are ignored.
func (d Details) ChecklistProgress() ChecklistProgress {
	progress := make(ChecklistProgress, len(checklist))
	stored, _ := d["checklist_progress"].(map[string]any)
	for _, item := range checklist {
		done, _ := stored[item.ID].(bool)
		progress[item.ID] = done
	}
	return progress
}

// Toggle returns a copy of p with id flipped.
func (p ChecklistProgress) Toggle(id string) ChecklistProgress {
	cp := make(ChecklistProgress, len(p))
	for k, v := range p {
		cp[k] = v
	}
	cp[id] = !p[id]
	return cp
}

// Done counts the finished tasks.
func (p ChecklistProgress) Done() int {
	n := 0
	for _, item := range checklist {
		if p[item.ID] {
			n++
		}
	}
	return n
}

// Percent is the share of finished tasks, rounded to a whole percent.
func (p ChecklistProgress) Percent() int {
	return (p.Done()*100 + len(checklist)/2) / len(checklist)
}

// Details returns the progress in the shape stored in booking details.
func (p ChecklistProgress) Details() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
