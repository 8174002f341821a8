package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	ServiceUnavailable  failure.ErrorCode = "ServiceUnavailable"

	// Метки адресов
	LabelNotFound     failure.ErrorCode = "LabelNotFound"     // адреса нет в known_wallets
	LabelLookupFailed failure.ErrorCode = "LabelLookupFailed" // хранилище меток недоступно
	InvalidLabel      failure.ErrorCode = "InvalidLabel"      // мусор в категории при импорте

	// Токены и пулы
	TokenNotFound failure.ErrorCode = "TokenNotFound"
	PoolNotFound  failure.ErrorCode = "PoolNotFound"
)
