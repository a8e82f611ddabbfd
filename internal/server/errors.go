package server

import (
	"errors"
	"net/http"

	"StockLens/internal/model"
	"StockLens/internal/simulator"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Level     string `json:"level"` // info, warning, error
	Retryable bool   `json:"retryable"`
}

var invalidInputMessages = map[string]string{
	"company":    "조회할 회사 이름을 입력하세요.",
	"date_range": "시작 날짜와 종료 날짜를 모두 선택해주세요.",
	"buy_date":   "매수 날짜는 오늘 이전의 날짜로 선택해주세요.",
	"amount":     "투자 금액은 0원보다 커야 합니다.",
	"body":       "요청 형식이 올바르지 않습니다.",
}

// describe maps an error to a status and the message shown to the user.
func describe(err error) (int, errorResponse) {
	var invalid *model.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		msg, ok := invalidInputMessages[invalid.Field]
		if !ok {
			msg = "입력값을 확인해주세요: " + invalid.Reason
		}
		return http.StatusBadRequest, errorResponse{Error: msg, Kind: "invalid_input", Level: "warning"}
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Error: "입력값을 확인해주세요.", Kind: "invalid_input", Level: "warning"}
	case errors.Is(err, model.ErrCompanyNotFound):
		return http.StatusNotFound, errorResponse{
			Error: "종목을 찾을 수 없습니다. 정확한 회사명이나 6자리 종목코드를 입력해주세요.",
			Kind:  "company_not_found", Level: "error",
		}
	case errors.Is(err, model.ErrNoDataInRange):
		return http.StatusNotFound, errorResponse{Error: "해당 기간의 주가 데이터가 없습니다.", Kind: "no_data", Level: "info"}
	case errors.Is(err, model.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, errorResponse{
			Error: "데이터를 불러오지 못했습니다. 잠시 후 다시 시도해주세요.",
			Kind:  "provider_unavailable", Level: "error", Retryable: true,
		}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "오류가 발생했습니다.", Kind: "internal", Level: "error"}
	}
}

// verdictMessages are shown next to a simulation result.
var verdictMessages = map[simulator.Verdict]string{
	simulator.VerdictJackpot: "대박이네요! 밥 한 끼 사세요! 🍖",
	simulator.VerdictGain:    "은행 이자보다는 낫네요! 👍",
	simulator.VerdictHold:    "존버는 승리합니다... 화이팅! 😭",
	simulator.VerdictLoss:    "아이고... 눈물이 앞을 가립니다... 💦",
}

// UserMessage returns the message shown to the user for err.
func UserMessage(err error) string {
	_, body := describe(err)
	return body.Error
}

// VerdictMessage returns the display line for a simulation verdict.
func VerdictMessage(v simulator.Verdict) string { return verdictMessages[v] }
