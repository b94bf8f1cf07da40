// internal/models/tickets.go
package models

type SubtaskRole string

const (
	RoleFrontend SubtaskRole = "FED"
	RoleBackend  SubtaskRole = "BED"
	RoleQA       SubtaskRole = "QA"
)

// SubtaskRoles is the fixed order sub-tasks are reported in.
var SubtaskRoles = []SubtaskRole{RoleFrontend, RoleBackend, RoleQA}

// TicketPlan is the text of the four issues to create.
type TicketPlan struct {
	ParentSummary     string `json:"parentSummary"`
	ParentDescription string `json:"parentDescription"`
	FEDSummary        string `json:"fedSummary"`
	FEDDescription    string `json:"fedDescription"`
	BEDSummary        string `json:"bedSummary"`
	BEDDescription    string `json:"bedDescription"`
	QASummary         string `json:"qaSummary"`
	QADescription     string `json:"qaDescription"`
}

func (p TicketPlan) Subtask(role SubtaskRole) (summary, description string) {
	switch role {
	case RoleFrontend:
		return p.FEDSummary, p.FEDDescription
	case RoleBackend:
		return p.BEDSummary, p.BEDDescription
	case RoleQA:
		return p.QASummary, p.QADescription
	}
	return "", ""
}

type Ticket struct {
	Key     string `json:"key"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// TicketSet is the outcome of creating a parent issue and its sub-tasks.
// Sub-tasks are only attempted once Parent is set.
type TicketSet struct {
	Parent         *Ticket  `json:"parent,omitempty"`
	FED            *Ticket  `json:"fed,omitempty"`
	BED            *Ticket  `json:"bed,omitempty"`
	QA             *Ticket  `json:"qa,omitempty"`
	CompletedTasks []string `json:"completedTasks"`
	FailedTasks    []string `json:"failedTasks"`
}

func NewTicketSet() *TicketSet {
	return &TicketSet{CompletedTasks: []string{}, FailedTasks: []string{}}
}

func (s *TicketSet) Subtask(role SubtaskRole) *Ticket {
	switch role {
	case RoleFrontend:
		return s.FED
	case RoleBackend:
		return s.BED
	case RoleQA:
		return s.QA
	}
	return nil
}

func (s *TicketSet) SetSubtask(role SubtaskRole, t *Ticket) {
	switch role {
	case RoleFrontend:
		s.FED = t
	case RoleBackend:
		s.BED = t
	case RoleQA:
		s.QA = t
	}
}

// Subtasks returns the created sub-tasks in role order.
func (s *TicketSet) Subtasks() []Ticket {
	out := make([]Ticket, 0, len(SubtaskRoles))
	for _, role := range SubtaskRoles {
		if t := s.Subtask(role); t != nil {
			out = append(out, *t)
		}
	}
	return out
}
