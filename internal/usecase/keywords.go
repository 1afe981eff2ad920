package usecase

import "github.com/NasaVasa/partprice/internal/domain"

type categoryKeywords struct {
	Category domain.Category
	Keywords []string
}

// importKeywords drives ImportAll in this order. HDD has no entry.
var importKeywords = []categoryKeywords{
	{domain.CategoryCPU, []string{"데스크탑 CPU", "인텔 CPU", "AMD 라이젠 CPU", "게이밍 CPU"}},
	{domain.CategoryGPU, []string{"데스크탑 그래픽카드", "지포스 그래픽카드", "라데온 그래픽카드", "게이밍 그래픽카드"}},
	{domain.CategoryRAM, []string{"데스크탑 DDR5 메모리", "데스크탑 DDR4 메모리", "삼성 데스크탑 램", "게이밍 메모리 램"}},
	{domain.CategorySSD, []string{"NVMe SSD", "M.2 SSD 1TB", "삼성 SSD", "데스크탑 SSD"}},
	{domain.CategoryMotherboard, []string{"데스크탑 메인보드", "인텔 메인보드", "AMD 메인보드", "게이밍 메인보드"}},
	{domain.CategoryPowerSupply, []string{"컴퓨터 파워서플라이", "데스크탑 파워", "80플러스 파워서플라이", "게이밍 파워"}},
	{domain.CategoryCase, []string{"컴퓨터 케이스", "데스크탑 케이스", "미들타워 케이스", "게이밍 PC 케이스"}},
	{domain.CategoryCooler, []string{"CPU 쿨러", "타워쿨러", "수냉쿨러", "공랭쿨러"}},
}

func keywordsFor(category domain.Category) ([]string, bool) {
	for _, entry := range importKeywords {
		if entry.Category == category {
			return entry.Keywords, true
		}
	}
	return nil, false
}
