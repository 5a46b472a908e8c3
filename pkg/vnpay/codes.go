package vnpay

// ResponseInfo describes a gateway response code.
type ResponseInfo struct {
	Success   bool
	Message   string
	ErrorType string
}

// UserMessage is the localized outcome shown on the return page.
type UserMessage struct {
	Title   string
	Message string
	Action  string
	Color   string
}

var responseCodes = map[string]ResponseInfo{
	"00": {true, "Giao dịch thành công", "success"},
	"05": {false, "Thẻ/Tài khoản của khách hàng không đủ số dư để thực hiện giao dịch", "insufficient_funds"},
	"06": {false, "Thẻ/Tài khoản của khách hàng bị khóa hoặc chưa được kích hoạt dịch vụ giao dịch trực tuyến", "card_blocked"},
	"07": {false, "Thẻ/Tài khoản của khách hàng đã bị tạm khóa", "card_suspended"},
	"09": {false, "Thẻ/Tài khoản của khách hàng chưa đăng ký dịch vụ InternetBanking tại ngân hàng", "not_registered"},
	"10": {false, "Khách hàng xác thực thông tin thẻ/tài khoản không đúng quá 3 lần", "authentication_failed"},
	"11": {false, "Đã hết hạn chờ thanh toán. Xin quý khách vui lòng thực hiện lại giao dịch", "timeout"},
	"12": {false, "Thẻ/Tài khoản của khách hàng bị khóa", "card_locked"},
	"13": {false, "Quý khách nhập sai mật khẩu xác thực giao dịch (OTP)", "wrong_otp"},
	"24": {false, "Khách hàng hủy giao dịch", "user_cancelled"},
	"51": {false, "Tài khoản của quý khách không đủ số dư để thực hiện giao dịch", "insufficient_balance"},
	"65": {false, "Tài khoản của Quý khách đã vượt quá hạn mức giao dịch trong ngày", "daily_limit_exceeded"},
	"75": {false, "Ngân hàng thanh toán đang bảo trì", "bank_maintenance"},
	"79": {false, "KH nhập sai mật khẩu thanh toán quá số lần quy định", "password_attempts_exceeded"},
	"99": {false, "Các lỗi khác (lỗi hệ thống)", "system_error"},
}

var unknownResponse = ResponseInfo{false, "Giao dịch không thành công. Vui lòng thử lại sau", "unknown_error"}

// classification groups response codes that share one user-facing message.
var classification = map[string]string{
	"00": "success",
	"05": "insufficient_funds",
	"51": "insufficient_funds",
	"06": "not_activated",
	"09": "not_activated",
	"07": "card_blocked",
	"12": "card_blocked",
	"11": "expired",
	"24": "user_cancelled",
	"13": "wrong_otp",
	"99": "system_error",
}

var userMessages = map[string]UserMessage{
	"success": {
		Title:   "Thanh toán thành công",
		Message: "Cảm ơn bạn đã thanh toán. Đơn hàng của bạn đã được xác nhận.",
		Action:  "Xem đơn hàng",
		Color:   "green",
	},
	"insufficient_funds": {
		Title:   "Thẻ không đủ số dư",
		Message: "Tài khoản của bạn không đủ số dư để thực hiện giao dịch này. Vui lòng kiểm tra số dư hoặc sử dụng thẻ khác.",
		Action:  "Thử lại",
		Color:   "red",
	},
	"not_activated": {
		Title:   "Thẻ chưa kích hoạt",
		Message: "Thẻ/tài khoản của bạn chưa được kích hoạt dịch vụ thanh toán trực tuyến. Vui lòng liên hệ ngân hàng để kích hoạt.",
		Action:  "Liên hệ ngân hàng",
		Color:   "orange",
	},
	"card_blocked": {
		Title:   "Thẻ bị khóa",
		Message: "Thẻ/tài khoản của bạn đã bị khóa. Vui lòng liên hệ ngân hàng để được hỗ trợ.",
		Action:  "Liên hệ ngân hàng",
		Color:   "red",
	},
	"expired": {
		Title:   "Thẻ hết hạn",
		Message: "Thẻ của bạn đã hết hạn hoặc phiên giao dịch đã hết thời gian. Vui lòng sử dụng thẻ khác.",
		Action:  "Thử lại",
		Color:   "gray",
	},
	"wrong_otp": {
		Title:   "Sai mã OTP",
		Message: "Bạn đã nhập sai mã OTP. Vui lòng thực hiện lại giao dịch và nhập đúng mã OTP.",
		Action:  "Thử lại",
		Color:   "orange",
	},
	"user_cancelled": {
		Title:   "Đã hủy giao dịch",
		Message: "Bạn đã hủy giao dịch thanh toán. Đơn hàng vẫn được giữ, bạn có thể thanh toán lại.",
		Action:  "Thanh toán lại",
		Color:   "blue",
	},
	"system_error": {
		Title:   "Lỗi hệ thống",
		Message: "Có lỗi xảy ra trong quá trình xử lý. Vui lòng thử lại sau hoặc liên hệ hỗ trợ.",
		Action:  "Thử lại",
		Color:   "red",
	},
	"unknown": {
		Title:   "Lỗi không xác định",
		Message: "Giao dịch không thành công. Vui lòng thử lại sau.",
		Action:  "Thử lại",
		Color:   "gray",
	},
}

// Describe maps a gateway response code to its meaning.
func Describe(responseCode string) ResponseInfo {
	if info, ok := responseCodes[responseCode]; ok {
		return info
	}
	return unknownResponse
}

// Message returns the localized title/message/action/color tuple for a code.
func Message(responseCode string) UserMessage {
	if class, ok := classification[responseCode]; ok {
		return userMessages[class]
	}
	return userMessages["unknown"]
}

var ackMessages = map[string]string{
	AckConfirmed:        "Confirm Success",
	AckOrderNotFound:    "Order not found",
	AckInvalidSignature: "Invalid Checksum",
	AckSystemError:      "Unknown error",
}

// AckMessage returns the message paired with a notification acknowledgement code.
func AckMessage(ack string) string {
	if msg, ok := ackMessages[ack]; ok {
		return msg
	}
	return ackMessages[AckSystemError]
}
