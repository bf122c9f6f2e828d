package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/m3rciful/boardbot/internal/catalog"
	"github.com/m3rciful/boardbot/internal/registration"
)

// User-facing texts. They keep the wording the community already knows.
const (
	msgNoNames       = "❌ 등록할 게임명을 1개 이상 입력해주세요. (예: <code>!등록 가이아, 루트</code>)"
	msgNoDeleteName  = "❌ 삭제할 게임명을 입력해주세요. (예: <code>!삭제 가이아</code>)"
	msgEmptyCatalog  = "📝 등록된 게임이 없습니다."
	msgCancelled     = "🛑 진행 중인 등록을 취소했어요."
	msgNothingToStop = "ℹ️ 진행 중인 등록이 없어요."
	msgStaleChoice   = "⌛ 이미 지난 선택지예요."
	msgUnknownButton = "⌛ 더 이상 사용할 수 없는 버튼이에요."
	msgAdminOnly     = "⛔ 관리자만 사용할 수 있어요."
	msgRateLimited   = "⏳ 잠시 후 다시 시도해주세요."
	msgStoreFailure  = "❌ 게임 목록을 저장하지 못했어요. 마지막 선택을 다시 눌러 재시도해주세요."
	msgInternal      = "❌ 요청을 처리하지 못했어요. 잠시 후 다시 시도해주세요."

	labelPrev   = "◀ 이전"
	labelNext   = "다음 ▶"
	labelCancel = "❌ 취소"
)

func msgRegistered(n int) string {
	return fmt.Sprintf("✅ %d개의 게임이 등록되었습니다!", n)
}

func msgPageRange(total int) string {
	return fmt.Sprintf("❌ 페이지 번호가 올바르지 않습니다. 1부터 %d 사이 숫자를 입력하세요.", total)
}

func msgNotFound(name string) string {
	return fmt.Sprintf("❌ 목록에 \"%s\" 게임이 없어요.", html.EscapeString(name))
}

func msgDeleted(name string) string {
	return fmt.Sprintf("🗑️ \"%s\" 게임이 목록에서 삭제됐어요.", html.EscapeString(name))
}

func msgSelected(game string, field registration.Field, value int) string {
	label := "최소 인원"
	if field == registration.AwaitingMax {
		label = "최대 인원"
	}
	return fmt.Sprintf("✔️ [%s] %s: %d명", html.EscapeString(game), label, value)
}

func msgStats(games, sessions int, sent, failed uint64) string {
	return fmt.Sprintf("📊 등록된 게임: %d개\n진행 중인 등록: %d건\n전송 성공/실패: %d/%d", games, sessions, sent, failed)
}

// renderPage formats one catalog page as the list reply.
func renderPage(p catalog.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 등록된 게임 목록 (페이지 %d / %d):\n\n", p.Number, p.Total)
	for _, e := range p.Entries {
		fmt.Fprintf(&b, "* %s (%s명)\n", html.EscapeString(e.Name), html.EscapeString(e.Players))
	}
	return b.String()
}

const helpText = `🎲 보드게임 목록 봇

/register 게임1, 게임2 (<code>!등록</code>) - 게임을 등록하고 인원을 선택합니다
/list [페이지] (<code>!목록</code>) - 등록된 게임 목록을 봅니다
/delete 게임명 (<code>!삭제</code>) - 게임을 목록에서 삭제합니다
/cancel (<code>!취소</code>) - 진행 중인 등록을 취소합니다`
