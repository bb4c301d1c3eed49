package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Check 记录一次资格检测的完整结果。
// 每次提交只写入一条记录：成功和失败都是单次原子写入，
// 不存在部分更新的中间态。
type Check struct {
	gorm.Model
	ClientID        string `gorm:"size:64;index"`
	JobDescription  string `gorm:"type:text"`
	ResumeObjectKey string `gorm:"size:512"`
	ResumePages     int
	Status          string `gorm:"size:32;index"`
	ErrorCode       int
	ErrorMessage    string `gorm:"size:512"`
	Eligibility     *bool
	MatchScore      *int
	MatchedSkills   datatypes.JSON `gorm:"type:jsonb"`
	UnmatchedSkills datatypes.JSON `gorm:"type:jsonb"`
	RawResponse     datatypes.JSON `gorm:"type:jsonb"`
}

// Check 的状态取值。
const (
	CheckStatusCompleted = "completed"
	CheckStatusFailed    = "failed"
)
