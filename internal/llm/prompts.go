package llm

import (
	"fmt"
	"strings"

	"bizplan/internal/domain"
	"bizplan/internal/money"
	"bizplan/internal/plan"
)

const transcriptionPrompt = "Vui lòng chuyển đổi file âm thanh sau thành văn bản. " +
	"Sử dụng nhận dạng người nói để gán nhãn cho từng người (Người nói 1, Người nói 2, ...). " +
	"Chỉ trả về nội dung phiên âm kèm nhãn người nói, không thêm bình luận hay định dạng khác."

func ratio(part, whole float64) string {
	if whole == 0 {
		return money.Percent(0)
	}
	return money.Percent(part / whole * 100)
}

func analysisPrompt(s plan.Summary) string {
	operating := s.OperatingCost()

	var b strings.Builder
	b.WriteString("**Bối cảnh:** Bạn là chuyên gia phân tích tài chính doanh nghiệp, nhiều năm kinh nghiệm đánh giá hiệu quả kinh doanh.\n\n")
	b.WriteString("**Nhiệm vụ:** Phân tích báo cáo kết quả kinh doanh của kế hoạch dưới đây một cách logic, có luận cứ rõ ràng.\n\n")

	b.WriteString("**Dữ liệu kế hoạch kinh doanh:**\n")
	fmt.Fprintf(&b, "- Tổng Doanh thu thuần: %s VND\n", money.VND(s.TotalRevenue))
	fmt.Fprintf(&b, "- Tổng Giá vốn hàng bán: %s VND\n", money.VND(s.TotalCOGS))
	fmt.Fprintf(&b, "- Tổng Lợi nhuận gộp: %s VND\n", money.VND(s.GrossProfit))
	fmt.Fprintf(&b, "- Tổng Chi phí hoạt động (Bán hàng + QLDN): %s VND\n", money.VND(operating))
	fmt.Fprintf(&b, "- Tổng Chi phí tài chính: %s VND\n", money.VND(s.TotalFinancialCost))
	fmt.Fprintf(&b, "- Tổng Lợi nhuận trước thuế: %s VND\n", money.VND(s.ProfitBeforeTax))
	fmt.Fprintf(&b, "- Tổng Lợi nhuận ròng: %s VND\n\n", money.VND(s.NetProfit))

	b.WriteString("**Các chỉ số hiệu suất chính:**\n")
	fmt.Fprintf(&b, "- Tỷ suất lợi nhuận gộp: %s\n", ratio(s.GrossProfit, s.TotalRevenue))
	fmt.Fprintf(&b, "- Tỷ suất lợi nhuận ròng: %s\n", ratio(s.NetProfit, s.TotalRevenue))
	fmt.Fprintf(&b, "- Tỷ lệ Giá vốn trên doanh thu: %s\n", ratio(s.TotalCOGS, s.TotalRevenue))
	fmt.Fprintf(&b, "- Tỷ lệ Chi phí hoạt động trên doanh thu: %s\n", ratio(operating, s.TotalRevenue))
	fmt.Fprintf(&b, "- Số lượng sản phẩm trong kế hoạch: %d\n\n", s.ItemCount)

	b.WriteString("**Lưu ý về dữ liệu:** Chỉ có số liệu của báo cáo kết quả kinh doanh. Không có bảng cân đối kế toán hay lưu chuyển tiền tệ. ")
	b.WriteString("Với ROE, ROA, hệ số nợ, khả năng thanh toán, vòng quay vốn và hàng tồn kho, hãy nêu rõ giả định trước khi ước tính.\n\n")

	b.WriteString("**Cấu trúc phân tích:**\n")
	b.WriteString("1. Phân tích tổng quan (thương mại nhập khẩu thực phẩm đông lạnh, quy mô theo doanh thu).\n")
	b.WriteString("2. Đánh giá kết quả kinh doanh và so sánh ước tính với doanh nghiệp cùng ngành tại Việt Nam.\n")
	b.WriteString("3. Phân tích điểm hòa vốn, nêu rõ cách phân loại biến phí và định phí.\n")
	b.WriteString("4. Các chỉ số tài chính chính dựa trên giả định, số vòng quay vốn trong một năm.\n")
	b.WriteString("5. Nhận định rủi ro, cơ hội và dự báo.\n")
	b.WriteString("6. Kết luận.\n\n")

	b.WriteString("**Trình bày:** Trả về Markdown bằng tiếng Việt. Dùng ### cho tiêu đề mục, danh sách gạch đầu dòng, **in đậm** để nhấn mạnh và bảng Markdown khi cần. Không dùng thẻ HTML.")
	return b.String()
}

func writeMeetingDetails(b *strings.Builder, d domain.MeetingDetails) {
	orDefault := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return "Not specified"
		}
		return v
	}
	fmt.Fprintf(b, "- **Topic/Purpose:** %s\n", orDefault(d.Topic))
	fmt.Fprintf(b, "- **Time and Place:** %s\n", orDefault(d.TimeAndPlace))
	fmt.Fprintf(b, "- **Chairperson:** %s\n", orDefault(d.Chair))
	fmt.Fprintf(b, "- **Attendees:** %s\n", orDefault(d.Attendees))
}

func minutesPrompt(transcription string, d domain.MeetingDetails) string {
	var b strings.Builder
	b.WriteString("Based on the meeting transcription and details below, generate a professional meeting minutes document in HTML.\n\n")
	b.WriteString("**Meeting Details:**\n")
	writeMeetingDetails(&b, d)
	b.WriteString("\n**Meeting Transcription:**\n---\n")
	b.WriteString(transcription)
	b.WriteString("\n---\n\n")
	b.WriteString("**Instructions:**\n")
	b.WriteString("1. Output a single block of HTML without markdown backticks.\n")
	b.WriteString("2. Use Tailwind CSS classes on a light theme.\n")
	b.WriteString("3. Include an <h1> title with the topic, a details section, and <h2> sections for Agenda, Discussion Summary, Decisions Made and Action Items.\n")
	b.WriteString("4. Action items state the task and the person responsible. Infer the agenda from the discussion if it is not stated.\n")
	b.WriteString("5. Write everything in Vietnamese.\n")
	return b.String()
}

func regeneratePrompt(transcription string, d domain.MeetingDetails, previousHTML, editRequest string) string {
	var b strings.Builder
	b.WriteString("You are editing a set of Vietnamese meeting minutes. Apply the user's edit request and return the complete new HTML document.\n\n")
	fmt.Fprintf(&b, "**User's Edit Request:**\n%q\n\n", editRequest)
	b.WriteString("**Original Meeting Transcription:**\n---\n")
	b.WriteString(transcription)
	b.WriteString("\n---\n\n**Original Meeting Details:**\n")
	writeMeetingDetails(&b, d)
	b.WriteString("\n**Previous HTML Version of Minutes:**\n---\n")
	b.WriteString(previousHTML)
	b.WriteString("\n---\n\n")
	b.WriteString("**Instructions:** Use the transcription when the request is vague. Keep the same Tailwind styling and structure. ")
	b.WriteString("Output a single block of HTML in Vietnamese without markdown backticks.\n")
	return b.String()
}

func productLine(p domain.Product) string {
	return fmt.Sprintf("- '%s' (Thương hiệu: %s, Mã: %s)\n", plan.DisplayName(p), p.Brand, p.Code)
}

func assistantSystemPrompt(draft plan.Draft, products []domain.Product) string {
	var b strings.Builder
	b.WriteString("Bạn là trợ lý AI của ứng dụng lập kế hoạch kinh doanh nhập khẩu thực phẩm đông lạnh. ")
	b.WriteString("Bạn chuyển yêu cầu của người dùng (tiếng Việt) thành các hành động chỉnh sửa kế hoạch.\n\n")

	b.WriteString("Trả về DUY NHẤT một đối tượng JSON dạng:\n")
	b.WriteString(`{"reply": "<xác nhận ngắn gọn hoặc câu hỏi làm rõ>", "actions": [{"name": "<tên hành động>", "args": {...}}]}`)
	b.WriteString("\nNếu yêu cầu chưa rõ, để actions rỗng và hỏi lại trong reply.\n\n")

	b.WriteString("Các hành động:\n")
	fmt.Fprintf(&b, "- %s: args product_name, property_name, new_value\n", ActionUpdateProduct)
	fmt.Fprintf(&b, "- %s: args filter_property (all|brand|group), filter_value, target_property, update_type (%s|%s|%s|%s|%s), update_value\n",
		ActionBulkUpdate, plan.OpPctIncrease, plan.OpPctDecrease, plan.OpAbsIncrease, plan.OpAbsDecrease, plan.OpSet)
	fmt.Fprintf(&b, "- %s: args product_name, quantity_kg, price_usd_per_ton (tùy chọn), selling_price_vnd_per_kg (tùy chọn)\n", ActionAddProduct)
	fmt.Fprintf(&b, "- %s: args setting_name, new_value\n", ActionUpdateSetting)
	fmt.Fprintf(&b, "- %s: args product_name\n\n", ActionRemoveProduct)

	b.WriteString("product_name là tên tiếng Việt kèm nhóm hàng, ví dụ \"Thịt trâu - Thăn ngoại\".\n")
	b.WriteString("Thuộc tính sản phẩm hợp lệ: ")
	for i, f := range plan.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.LocalKey())
	}
	b.WriteString(".\nCài đặt chung hợp lệ: ")
	for i, s := range plan.Settings() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.LocalKey())
	}
	b.WriteString(".\nSố tiền luôn tính bằng VND đầy đủ (7 triệu = 7000000), kể cả phi_dich_vu_mua_hang.\n\n")

	b.WriteString("Ví dụ:\n")
	b.WriteString(`- "tăng giá nhập của thương hiệu Alana lên 5%" -> {"name": "bulk_update_products", "args": {"filter_property": "brand", "filter_value": "Alana", "target_property": "gia_mua_usd", "update_type": "percentage_increase", "update_value": 5}}`)
	b.WriteString("\n")
	b.WriteString(`- "đặt tỷ giá nhập khẩu thành 26500" -> {"name": "update_general_setting", "args": {"setting_name": "ty_gia_nhap_khau", "new_value": 26500}}`)
	b.WriteString("\n\n")

	b.WriteString("Sản phẩm trong kế hoạch:\n")
	if len(draft.Items) == 0 {
		b.WriteString("- Chưa có sản phẩm nào.\n")
	}
	for _, item := range draft.Items {
		b.WriteString(productLine(item.Product))
	}
	b.WriteString("\nDanh mục sản phẩm có thể thêm:\n")
	for _, p := range products {
		b.WriteString(productLine(p))
	}
	return b.String()
}
