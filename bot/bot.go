package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/yadavaman13/Fasal-Mitra/config"
	"github.com/yadavaman13/Fasal-Mitra/model"
	"github.com/yadavaman13/Fasal-Mitra/service"
	"github.com/yadavaman13/Fasal-Mitra/utils"
)

const startText = `🌾 Welcome to Fasal-Mitra!

Send me a photo of an affected leaf and put the crop name in the
caption (for example: tomato). I will identify the disease, estimate
how severe it is and suggest a treatment.

Commands:
/crops - list supported crops
/help  - how to take a good photo`

const helpText = `📷 How to take a good photo:
1. Use natural daylight, avoid shadows
2. Fill the frame with a single affected leaf
3. Keep the camera steady and close
4. Put the crop name in the caption, e.g. tomato`

// Router 处理Telegram更新：照片走诊断管线，命令返回帮助信息
type Router struct {
	bot       *tgbotapi.BotAPI
	detection *service.DetectionService
	cfg       *config.Config
}

func New(cfg *config.Config, detection *service.DetectionService) (*Router, error) {
	b, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	b.Debug = cfg.Bot.Debug

	utils.Logger.Info("telegram bot authorized", zap.String("username", b.Self.UserName))
	return &Router{bot: b, detection: detection, cfg: cfg}, nil
}

// Run 长轮询收取更新，ctx 取消后平滑退出
func (r *Router) Run(ctx context.Context) error {
	offset := 0
	for {
		select {
		case <-ctx.Done():
			utils.Logger.Info("bot stopped")
			return nil
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := r.bot.GetUpdates(u)
		if err != nil {
			utils.Logger.Warn("polling error", zap.Error(err))
			time.Sleep(2 * time.Second)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			r.handleUpdate(ctx, upd)
		}
	}
}

func (r *Router) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	switch {
	case msg.IsCommand():
		r.handleCommand(msg)
	case len(msg.Photo) > 0:
		r.handlePhoto(ctx, msg)
	case msg.Text != "":
		r.send(msg.Chat.ID, "Send a photo of the affected leaf with the crop name in the caption, e.g. tomato.")
	}
}

func (r *Router) handleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start":
		r.send(cid, startText)
	case "help":
		r.send(cid, helpText)
	case "crops":
		r.send(cid, "Supported crops:\n• "+strings.Join(r.detection.SupportedCrops(), "\n• "))
	default:
		r.send(cid, "Unknown command. Try /help.")
	}
}

func (r *Router) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	cropHint := strings.TrimSpace(msg.Caption)

	// Telegram 照片统一被转成JPEG，尺寸可在下载前校验
	ph := msg.Photo[len(msg.Photo)-1]
	if err := r.detection.ValidateUpload(int64(ph.FileSize), "image/jpeg", cropHint); err != nil {
		r.send(cid, friendlyError(err))
		return
	}

	r.send(cid, "🔍 Analyzing your photo...")

	file, err := r.bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		utils.Logger.Warn("telegram get file failed", zap.Error(err))
		r.send(cid, "Could not fetch the photo from Telegram, please send it again.")
		return
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.bot.Token, file.FilePath)
	data, err := download(url)
	if err != nil {
		utils.Logger.Warn("photo download failed", zap.Error(err))
		r.send(cid, "Could not fetch the photo from Telegram, please send it again.")
		return
	}

	req := &model.DetectionRequest{
		ImageBytes:  data,
		ContentType: "image/jpeg",
		CropHint:    cropHint,
	}
	resp, err := r.detection.Detect(ctx, req)
	if err != nil {
		r.send(cid, friendlyError(err))
		return
	}

	r.send(cid, FormatReply(resp))
}

func (r *Router) send(chatID int64, text string) {
	if len(text) > 3900 {
		text = text[:3900] + "…"
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.bot.Send(msg); err != nil {
		utils.Logger.Warn("telegram send failed", zap.Error(err))
	}
}

func download(url string) ([]byte, error) {
	resp, err := httpClient().Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
