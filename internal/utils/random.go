package utils

import (
	"math/rand"
	"strings"
	"time"

	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonFirstNames = []string{
	"Agus", "Budi", "Dewi", "Eka", "Fajar", "Hendra", "Indah", "Joko", "Kurnia", "Lestari",
	"Made", "Nur", "Putri", "Rina", "Sari", "Teguh", "Wahyu", "Yusuf", "Yohanes", "Maria",
}
var commonLastNames = []string{
	"Pratama", "Saputra", "Wijaya", "Hidayat", "Kurniawan", "Santoso", "Siregar", "Nainggolan",
	"Lumbantobing", "Rumbiak", "Wanma", "Sembiring", "Setiawan", "Halim", "Tanjung",
}

func GenerateRandomName() string {
	first := commonFirstNames[rand.Intn(len(commonFirstNames))]
	last := commonLastNames[rand.Intn(len(commonLastNames))]
	return first + " " + last
}

var roles = []domain.Role{
	domain.RoleViewer,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

// GenerateUsernameFromName 取每个单词的前缀再拼上随机数字
func GenerateUsernameFromName(name string) string {
	username := ""
	for _, part := range strings.Fields(strings.ToLower(name)) {
		length := rand.Intn(len(part)) + 1
		username += part[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomName()
	username := GenerateUsernameFromName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
		IsActive:     true,
	}

	return user, nil
}

// 每个时段的打卡窗口，单位为距离零点的分钟数
var punchWindows = [4][2]int{
	{6*60 + 30, 7*60 + 30},   // 早上
	{11*60 + 30, 12*60 + 15}, // 午休外出
	{12*60 + 30, 13*60 + 30}, // 午休回来
	{16*60 + 0, 17*60 + 30},  // 下班
}

// GenerateRandomEvents 为某人在某天生成打卡记录，每个时段约有九成概率打卡
func GenerateRandomEvents(name string, day time.Time) []domain.AttendanceEvent {
	events := make([]domain.AttendanceEvent, 0, len(punchWindows))

	// 约一成的人整天缺勤
	if rand.Intn(10) == 0 {
		return events
	}

	for _, window := range punchWindows {
		if rand.Intn(10) == 0 {
			continue
		}
		minute := window[0] + rand.Intn(window[1]-window[0])
		second := rand.Intn(60)
		events = append(events, domain.AttendanceEvent{
			EmployeeName: name,
			Timestamp:    day.Add(time.Duration(minute)*time.Minute + time.Duration(second)*time.Second),
		})
	}

	return events
}

var manualStatuses = []string{"IZIN", "SAKIT", "CUTI", "DINAS LUAR"}

func GenerateRandomStatus(name string, day time.Time) *domain.ManualStatusRecord {
	return &domain.ManualStatusRecord{
		EmployeeName: name,
		Date:         day,
		StatusText:   manualStatuses[rand.Intn(len(manualStatuses))],
	}
}
