package reporter

import (
	"fmt"
	"os"

	"opensea-bid-bot-go/internal/models"
	"opensea-bid-bot-go/internal/money"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary 汇总一个批次的出价结果
type Summary struct {
	Total     int
	Submitted int
	DryRun    int
	Skipped   int
	Failed    int
}

// Summarize 统计批量出价结果
func Summarize(outcomes []models.BidOutcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status {
		case models.BidStatusSubmitted:
			s.Submitted++
		case models.BidStatusDryRun:
			s.DryRun++
		case models.BidStatusSkipped:
			s.Skipped++
		case models.BidStatusFailed:
			s.Failed++
		}
	}
	return s
}

// PrintBatchReport 把批量出价结果渲染为表格输出到标准输出
func PrintBatchReport(contract *models.CollectionConfig, outcomes []models.BidOutcome) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle("出价结果: %s (maxBid %s ETH)", contract.Name, money.FromWei(contract.Strategy.MaxBid).String())
	t.AppendHeader(table.Row{"Token ID", "挂单价 (ETH)", "出价 (ETH)", "状态", "备注"})

	for _, o := range outcomes {
		amount := ""
		if !o.Amount.IsZero() {
			amount = money.FromWei(o.Amount).String()
		}
		t.AppendRow(table.Row{
			o.TokenID,
			money.FromWei(o.ListedPrice).String(),
			amount,
			string(o.Status),
			o.Err,
		})
	}

	s := Summarize(outcomes)
	t.AppendFooter(table.Row{"合计", s.Total, "", "",
		fmt.Sprintf("提交 %d / 演练 %d / 跳过 %d / 失败 %d", s.Submitted, s.DryRun, s.Skipped, s.Failed)})
	t.Render()
}
