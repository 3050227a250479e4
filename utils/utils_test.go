package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"ann@example.com", " bob.smith@mail.co.uk "}
	invalid := []string{"", "ann", "ann@", "ann@example", "a b@example.com"}
	for _, e := range valid {
		if !ValidateEmail(e) {
			t.Errorf("ValidateEmail(%q) = false", e)
		}
	}
	for _, e := range invalid {
		if ValidateEmail(e) {
			t.Errorf("ValidateEmail(%q) = true", e)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := map[string]bool{
		"short1":       false,
		"longenough":   false,
		"12345678":     false,
		"longenough1":  true,
		"S3cure-pass!": true,
	}
	for pw, want := range tests {
		if got := ValidatePassword(pw); got != want {
			t.Errorf("ValidatePassword(%q) = %v, want %v", pw, got, want)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	if !ValidatePhone("+1 (555) 010-9999") {
		t.Error("expected formatted US number to be valid")
	}
	if ValidatePhone("0123") {
		t.Error("expected leading zero number to be invalid")
	}
	if NormalizePhone("+1 (555) 010-9999") != "+15550109999" {
		t.Errorf("NormalizePhone = %q", NormalizePhone("+1 (555) 010-9999"))
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, time.March, 5, 23, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 8, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(start, end); got != 3 {
		t.Errorf("DaysBetween = %d, want 3", got)
	}
	if got := DaysBetween(end, start); got != -3 {
		t.Errorf("DaysBetween reversed = %d, want -3", got)
	}
	if eod := EndOfDay(start); eod.Day() != 5 || eod.Hour() != 23 || eod.Minute() != 59 {
		t.Errorf("EndOfDay = %v", eod)
	}
}

func TestDaysLabel(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{-4, "4 days ago"},
		{-30, "30 days ago"},
		{2, "in 2 days"},
		{45, "in 45 days"},
	}
	for _, tt := range tests {
		if got := DaysLabel(tt.days); got != tt.want {
			t.Errorf("DaysLabel(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestPasswordHash(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	hash, err := HashPassword("longenough1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("longenough1", hash) {
		t.Error("expected password to match")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(6)
	if len(s) != 6 {
		t.Fatalf("len = %d", len(s))
	}
	for _, r := range s {
		if r == '0' || r == 'O' || r == '1' || r == 'I' {
			t.Errorf("ambiguous character %q in %q", r, s)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "test-secret"
	userID := uuid.New()

	r := gin.New()
	r.GET("/private", AuthMiddleware(secret), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.String())
	})

	token, err := GenerateToken(userID, secret, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	expired, _ := GenerateToken(userID, secret, -time.Hour)
	foreign, _ := GenerateToken(userID, "other-secret", time.Hour)

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"bearer header", "Bearer " + token, "", http.StatusOK},
		{"cookie", "", token, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusOK && w.Body.String() != userID.String() {
				t.Errorf("body = %q, want %q", w.Body.String(), userID.String())
			}
		})
	}
}
