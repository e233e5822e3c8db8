package biz

import "errors"

// 报表相关错误
var (
	ErrCategoryNotFound = errors.New("course category not found")
	ErrInvalidCategory  = errors.New("invalid category id")
	ErrMalformedPath    = errors.New("malformed context path")
)

// 站点用量相关错误
var (
	ErrUsageScanFailed = errors.New("site usage scan failed")
)
