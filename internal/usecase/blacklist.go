package usecase

import (
	"strings"

	"github.com/NasaVasa/partprice/internal/domain"
)

// Listings containing any of these terms are never the part itself.
var globalBlacklist = []string{
	"중고",
	"리퍼",
	"렌탈",
	"케이블",
	"젠더",
	"어댑터",
	"청소",
	"클리너",
	"에어건",
	"거치대",
	"받침대",
	"보호필름",
	"스티커",
	"파우치",
	"가방",
	"키스킨",
	"마우스패드",
}

var categoryBlacklist = map[domain.Category][]string{
	domain.CategoryCPU: {
		"조립PC", "조립컴퓨터", "본체", "풀세트", "완본체", "노트북", "쿨러", "서멀", "써멀", "구리스",
	},
	domain.CategoryGPU: {
		"조립PC", "본체", "완본체", "노트북", "지지대", "라이저", "브라켓", "백플레이트", "워터블럭",
	},
	domain.CategoryMotherboard: {
		"조립PC", "본체", "완본체", "CPU세트", "cpu+", "I/O 실드", "배터리",
	},
	domain.CategoryRAM: {
		"조립PC", "본체", "노트북용", "방열판", "so-dimm", "sodimm",
	},
	domain.CategorySSD: {
		"외장", "인클로저", "케이스", "방열판", "브라켓", "usb",
	},
	domain.CategoryHDD: {
		"외장", "도킹", "케이스", "브라켓",
	},
	domain.CategoryPowerSupply: {
		"조립PC", "본체", "멀티탭", "ups", "노트북", "충전기",
	},
	domain.CategoryCase: {
		"조립PC", "완본체", "팬 단품", "먼지필터", "노트북", "휴대폰", "핸드폰", "스마트폰",
	},
	domain.CategoryCooler: {
		"조립PC", "본체", "노트북", "서멀", "써멀", "구리스", "쿨링패드",
	},
}

// IsBlacklisted reports whether a listing title matches the global or the
// category list. Matching is case-insensitive substring containment.
func IsBlacklisted(category domain.Category, title string) bool {
	lowered := strings.ToLower(title)
	return containsAny(lowered, globalBlacklist) || containsAny(lowered, categoryBlacklist[category])
}

func containsAny(lowered string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
