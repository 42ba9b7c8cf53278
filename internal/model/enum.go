package model

type AssetType string

const (
	AssetTypeCrypto  AssetType = "crypto"
	AssetTypeStock   AssetType = "stock"
	AssetTypeForex   AssetType = "forex"
	AssetTypeFutures AssetType = "futures"
)

func (a AssetType) Valid() bool {
	switch a {
	case AssetTypeCrypto, AssetTypeStock, AssetTypeForex, AssetTypeFutures:
		return true
	}
	return false
}

type TradeResult string

const (
	ResultWin       TradeResult = "win"
	ResultLoss      TradeResult = "loss"
	ResultBreakeven TradeResult = "breakeven"
	ResultOpen      TradeResult = "open"
)

func (r TradeResult) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultBreakeven, ResultOpen:
		return true
	}
	return false
}

type Emotion string

const (
	EmotionCalm        Emotion = "calm"
	EmotionConfident   Emotion = "confident"
	EmotionFearful     Emotion = "fearful"
	EmotionGreedy      Emotion = "greedy"
	EmotionFOMO        Emotion = "fomo"
	EmotionRevenge     Emotion = "revenge"
	EmotionUncertain   Emotion = "uncertain"
	EmotionDisciplined Emotion = "disciplined"
)

func (e Emotion) Valid() bool {
	switch e {
	case EmotionCalm, EmotionConfident, EmotionFearful, EmotionGreedy,
		EmotionFOMO, EmotionRevenge, EmotionUncertain, EmotionDisciplined:
		return true
	}
	return false
}
