package oracle

import (
	"fmt"
	"strings"
)

// maxPromptChars bounds the announcement text embedded in a prompt.
// Measured in runes so multi-byte Hangul never splits mid-character.
const maxPromptChars = 100_000

func buildPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("당신은 한국 정부지원사업 공고 분석 전문가입니다.\n")
	sb.WriteString("아래 공고 본문을 읽고 지시된 JSON 스키마로만 답변하십시오.\n\n")

	fmt.Fprintf(&sb, "공고명: %s\n", req.Title)
	fmt.Fprintf(&sb, "주관기관: %s\n", req.Agency)
	if req.Budget != "" {
		fmt.Fprintf(&sb, "공고예산: %s\n", req.Budget)
	}
	sb.WriteString("\n")

	sb.WriteString("판단 기준:\n")
	sb.WriteString("1. kill_switch.no_cash_labor: 인건비를 현금으로 지원하는 비목이 없거나, ")
	sb.WriteString("인건비가 현물 부담으로만 허용되면 true.\n")
	sb.WriteString("2. kill_switch.restricted_organizer: 신청 자격이 기업을 배제하는 기관 유형으로 ")
	sb.WriteString("한정되면 true.\n")
	fmt.Fprintf(&sb, "3. score_breakdown.domain_fit: 사업 분야 적합도, 0~%d점.\n", req.Rubric.DomainFitMax)
	fmt.Fprintf(&sb, "4. score_breakdown.role_fit: 수행 역할 적합도, 0~%d점.\n", req.Rubric.RoleFitMax)
	fmt.Fprintf(&sb, "5. score_breakdown.tech_fit: 기술 요구 적합도, 0~%d점.\n", req.Rubric.TechFitMax)
	fmt.Fprintf(&sb, "6. software_hits: 본문에 실제로 등장한 소프트웨어 산출물 키워드. 후보: %s\n",
		strings.Join(req.Rubric.SoftwareKeywords, ", "))
	fmt.Fprintf(&sb, "7. hardware_hits: 본문에 실제로 등장한 하드웨어 산출물 키워드. 후보: %s\n",
		strings.Join(req.Rubric.HardwareKeywords, ", "))
	fmt.Fprintf(&sb, "8. certification_required: 인증 요건(%s 등)이 명시되면 true.\n",
		strings.Join(req.Rubric.CertificationKeywords, ", "))
	fmt.Fprintf(&sb, "9. field_test_required: 실증 요건(%s 등)이 명시되면 true.\n",
		strings.Join(req.Rubric.FieldTestKeywords, ", "))
	sb.WriteString("10. summary: 공고의 핵심 내용과 판단 근거를 한국어 3문장 이내로 요약.\n\n")

	sb.WriteString("응답은 아래 JSON 객체 하나만 출력하십시오:\n")
	sb.WriteString(`{
  "kill_switch": {"no_cash_labor": false, "restricted_organizer": false, "reason": ""},
  "score_breakdown": {"domain_fit": 0, "role_fit": 0, "tech_fit": 0},
  "software_hits": [],
  "hardware_hits": [],
  "certification_required": false,
  "field_test_required": false,
  "summary": ""
}`)
	sb.WriteString("\n\n공고 본문:\n")
	sb.WriteString(truncate(req.Text, maxPromptChars))

	return sb.String()
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
