package domain

type Division struct {
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Members     []string `json:"members"`
}

type RosterEntry struct {
	EmployeeName     string `json:"employeeName"`
	Division         string `json:"division"`
	DivisionPriority int    `json:"divisionPriority"`
	InsertionOrder   int    `json:"insertionOrder"`
}
