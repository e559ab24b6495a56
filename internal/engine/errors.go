package engine

import "errors"

var (
	// ErrEmptyInput：空白搜索文本，在发出任何请求之前拒绝
	ErrEmptyInput = errors.New("empty search input")
	// ErrNoMatches：名称或服务区搜索零结果；只提示，不改变地图与列表
	ErrNoMatches = errors.New("no matches")
	// ErrSuperseded：结果到达时已有更新的搜索发出，结果被丢弃
	ErrSuperseded = errors.New("search superseded by a newer one")
	// ErrBadCoordinates：经纬度越界或非有限值
	ErrBadCoordinates = errors.New("coordinates out of range")
	// ErrSequenceUnavailable：无法确认结果是否仍为最新（发号器不可用），结果未应用
	ErrSequenceUnavailable = errors.New("search sequence unavailable")
)

// 用户可见的提示文本
const (
	NoticeEnterName     = "Please enter a business name to search"
	NoticeEnterArea     = "Please enter a service area name"
	NoticeNoNameMatches = "No businesses found with that name"
	NoticeNoAreaMatches = "No businesses found in that area"
	NoticeNameError     = "Error searching businesses"
	NoticeLoadError     = "Error loading businesses"
	NoticeUnavailable   = "Search is temporarily unavailable, please try again"
)
