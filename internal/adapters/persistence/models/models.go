package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// Users
// ============================================================

// User represents the users table / collection
type User struct {
	ID                     string     `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	Name                   string     `gorm:"size:100;not null" bson:"name" json:"name"`
	Email                  string     `gorm:"uniqueIndex;size:191;not null" bson:"email" json:"email"`
	Password               string     `gorm:"size:255;not null" bson:"password" json:"-"`
	Phone                  string     `gorm:"size:30" bson:"phone" json:"phone"`
	AltPhone               string     `gorm:"size:30" bson:"altPhone" json:"altPhone"`
	Role                   string     `gorm:"size:20;default:'student';index" bson:"role" json:"role"`
	Avatar                 string     `gorm:"size:500" bson:"avatar" json:"avatar"`
	RoomNumber             string     `gorm:"size:20" bson:"roomNumber" json:"roomNumber"`
	DOB                    string     `gorm:"column:dob;size:20" bson:"dob" json:"dob"`
	State                  string     `gorm:"size:100" bson:"state" json:"state"`
	City                   string     `gorm:"size:100" bson:"city" json:"city"`
	EmergencyContactName   string     `gorm:"size:100" bson:"emergencyContactName" json:"emergencyContactName"`
	EmergencyContactNumber string     `gorm:"size:30" bson:"emergencyContactNumber" json:"emergencyContactNumber"`
	Bio                    string     `gorm:"type:text" bson:"bio" json:"bio"`
	ResetToken             *string    `gorm:"size:64;index" bson:"resetToken,omitempty" json:"-"`
	ResetTokenExpiry       *time.Time `bson:"resetTokenExpiry,omitempty" json:"-"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" bson:"updatedAt" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// EnsureID assigns a new identifier when none is set
func (u *User) EnsureID() {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
}

// BeforeCreate is the GORM hook that assigns the identifier
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.EnsureID()
	return nil
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// ClearResetToken invalidates any outstanding reset token
func (u *User) ClearResetToken() {
	u.ResetToken = nil
	u.ResetTokenExpiry = nil
}

// Clone returns a deep copy
func (u *User) Clone() *User {
	cp := *u
	if u.ResetToken != nil {
		v := *u.ResetToken
		cp.ResetToken = &v
	}
	if u.ResetTokenExpiry != nil {
		v := *u.ResetTokenExpiry
		cp.ResetTokenExpiry = &v
	}
	return &cp
}

// UserSummary is the minimal projection used for pre-filling forms
type UserSummary struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar"`
	RoomNumber string `json:"roomNumber"`
	Phone      string `json:"phone"`
}

// ToSummary returns the minimal projection
func (u *User) ToSummary() *UserSummary {
	return &UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Avatar:     u.Avatar,
		RoomNumber: u.RoomNumber,
		Phone:      u.Phone,
	}
}

// UserProfile is the extended projection returned to the owner
type UserProfile struct {
	ID                     string `json:"_id"`
	Name                   string `json:"name"`
	Email                  string `json:"email"`
	Avatar                 string `json:"avatar"`
	Role                   string `json:"role"`
	RoomNumber             string `json:"roomNumber"`
	Phone                  string `json:"phone"`
	AltPhone               string `json:"altPhone"`
	DOB                    string `json:"dob"`
	State                  string `json:"state"`
	City                   string `json:"city"`
	EmergencyContactName   string `json:"emergencyContactName"`
	EmergencyContactNumber string `json:"emergencyContactNumber"`
	Bio                    string `json:"bio"`
}

// ToProfile returns the extended projection
func (u *User) ToProfile() *UserProfile {
	return &UserProfile{
		ID:                     u.ID,
		Name:                   u.Name,
		Email:                  u.Email,
		Avatar:                 u.Avatar,
		Role:                   u.Role,
		RoomNumber:             u.RoomNumber,
		Phone:                  u.Phone,
		AltPhone:               u.AltPhone,
		DOB:                    u.DOB,
		State:                  u.State,
		City:                   u.City,
		EmergencyContactName:   u.EmergencyContactName,
		EmergencyContactNumber: u.EmergencyContactNumber,
		Bio:                    u.Bio,
	}
}

// ============================================================
// Leave requests
// ============================================================

// LeaveRequest represents the leaves table / collection
type LeaveRequest struct {
	ID            string    `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	OwnerID       *string   `gorm:"size:36;index" bson:"student,omitempty" json:"student,omitempty"`
	StudentID     string    `gorm:"size:50;not null" bson:"studentId" json:"studentId"`
	Name          string    `gorm:"size:100;not null" bson:"name" json:"name"`
	RoomNumber    string    `gorm:"size:20" bson:"roomNumber" json:"roomNumber"`
	LeaveType     string    `gorm:"size:30;not null" bson:"leaveType" json:"leaveType"`
	Destination   string    `gorm:"size:200" bson:"destination" json:"destination"`
	ContactNumber string    `gorm:"size:30;not null" bson:"contactNumber" json:"contactNumber"`
	StartDate     time.Time `gorm:"not null" bson:"startDate" json:"startDate"`
	EndDate       time.Time `gorm:"not null" bson:"endDate" json:"endDate"`
	Reason        string    `gorm:"type:text;not null" bson:"reason" json:"reason"`
	Status        string    `gorm:"size:20;not null;default:'Pending';index" bson:"status" json:"status"`
	AdminComment  string    `gorm:"size:500" bson:"adminComment" json:"adminComment"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" bson:"updatedAt" json:"updatedAt"`

	// Populated on admin listings only
	Requester *Requester `gorm:"-" bson:"-" json:"requester,omitempty"`
}

func (LeaveRequest) TableName() string {
	return "leaves"
}

// Requester is the owning user's public details attached to admin listings
type Requester struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	RoomNumber string `json:"roomNumber"`
}

// EnsureID assigns a new identifier when none is set
func (l *LeaveRequest) EnsureID() {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
}

// BeforeCreate is the GORM hook that assigns the identifier
func (l *LeaveRequest) BeforeCreate(tx *gorm.DB) error {
	l.EnsureID()
	return nil
}

// IsOwnedBy reports whether the request belongs to the given user
func (l *LeaveRequest) IsOwnedBy(userID string) bool {
	return l.OwnerID != nil && *l.OwnerID == userID
}

// Clone returns a deep copy
func (l *LeaveRequest) Clone() *LeaveRequest {
	cp := *l
	if l.OwnerID != nil {
		v := *l.OwnerID
		cp.OwnerID = &v
	}
	if l.Requester != nil {
		r := *l.Requester
		cp.Requester = &r
	}
	return &cp
}

// LeaveSummary is the projection used by the admin summary
type LeaveSummary struct {
	ID          string    `json:"_id"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	LeaveType   string    `json:"leaveType"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToSummary returns the admin summary projection
func (l *LeaveRequest) ToSummary() *LeaveSummary {
	return &LeaveSummary{
		ID:          l.ID,
		StudentID:   l.StudentID,
		StudentName: l.Name,
		LeaveType:   l.LeaveType,
		StartDate:   l.StartDate,
		EndDate:     l.EndDate,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for the relational backends
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&LeaveRequest{},
	)
}
