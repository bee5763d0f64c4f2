package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
)

var ErrEmptyDivisionName = errors.New("division name must not be empty")

// Roster 名册在构造后不可变，按部门优先级、再按成员出现顺序排列，重复的名字只保留第一次出现
type Roster struct {
	divisions []domain.Division
	entries   []domain.RosterEntry
	index     map[string]int
}

func New(divisions []domain.Division) (*Roster, error) {
	sorted := make([]domain.Division, 0, len(divisions))
	for _, division := range divisions {
		division.Name = strings.TrimSpace(division.Name)
		if division.Name == "" {
			return nil, ErrEmptyDivisionName
		}

		members := make([]string, 0, len(division.Members))
		for _, member := range division.Members {
			member = strings.TrimSpace(member)
			if member != "" {
				members = append(members, member)
			}
		}
		division.Members = members
		sorted = append(sorted, division)
	}

	// 稳定排序，优先级相同的部门保持配置中的顺序
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	r := &Roster{
		divisions: sorted,
		entries:   make([]domain.RosterEntry, 0),
		index:     make(map[string]int),
	}

	for _, division := range sorted {
		for _, member := range division.Members {
			if _, exists := r.index[member]; exists {
				continue
			}
			r.index[member] = len(r.entries)
			r.entries = append(r.entries, domain.RosterEntry{
				EmployeeName:     member,
				Division:         division.Name,
				DivisionPriority: division.Priority,
				InsertionOrder:   len(r.entries),
			})
		}
	}

	return r, nil
}

// Load 从 JSON 文件读取部门配置
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var divisions []domain.Division
	if err := json.Unmarshal(data, &divisions); err != nil {
		return nil, fmt.Errorf("parse roster file %s: %w", path, err)
	}

	return New(divisions)
}

func (r *Roster) Len() int {
	return len(r.entries)
}

func (r *Roster) Entries() []domain.RosterEntry {
	entries := make([]domain.RosterEntry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

func (r *Roster) Names() []string {
	names := make([]string, len(r.entries))
	for i, entry := range r.entries {
		names[i] = entry.EmployeeName
	}
	return names
}

// Divisions 返回按优先级排序后的部门，成员列表为副本
func (r *Roster) Divisions() []domain.Division {
	divisions := make([]domain.Division, len(r.divisions))
	for i, division := range r.divisions {
		division.Members = append([]string(nil), division.Members...)
		divisions[i] = division
	}
	return divisions
}

func (r *Roster) DivisionOf(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.entries[i].Division, true
}
