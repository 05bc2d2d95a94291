package util

const (
	DateFormat    = "2006-01-02"
	TimeFormat    = "2006-01-02 15:04:05"
	DisplayFormat = "Jan 02, 2006 03:04 PM"
)

// 分页默认值
const (
	DefaultPage    = 1
	DefaultPerPage = 25
	MaxPerPage     = 200
)
