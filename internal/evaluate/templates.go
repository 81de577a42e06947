package evaluate

import (
	"math/rand"
	"sync"

	"golang.org/x/text/language"
)

// templateSet holds the per-tier display material for one language.
type templateSet struct {
	emotion  string
	comments []string
	emojis   []string
}

var englishTemplates = map[Tier]templateSet{
	TierExcellent: {
		emotion:  "thrilled",
		comments: []string{"Outstanding compression, hard to do better than this.", "Near-perfect result, the screen will love it.", "Top-shelf work, every byte earned its keep."},
		emojis:   []string{"🤩", "🎉", "🏆"},
	},
	TierGreat: {
		emotion:  "happy",
		comments: []string{"Great result, nicely balanced size and quality.", "Solid compression, this will look sharp on the pump head.", "Very good trade-off between detail and size."},
		emojis:   []string{"😄", "👍", "✨"},
	},
	TierGood: {
		emotion:  "content",
		comments: []string{"Decent result, there is still some room to squeeze.", "Good enough for most screens.", "Reasonable compression, consider the balanced preset next time."},
		emojis:   []string{"🙂", "👌", "💪"},
	},
	TierAverage: {
		emotion:  "neutral",
		comments: []string{"Average result, the input may already be well compressed.", "Not much saved this time, try a different format.", "The file resisted compression, nothing to worry about."},
		emojis:   []string{"😐", "🤔", "🔧"},
	},
}

var chineseTemplates = map[Tier]templateSet{
	TierExcellent: {
		emotion:  "兴奋",
		comments: []string{"压缩效果极佳，几乎无可挑剔！", "近乎完美的结果，水冷屏一定很满意。", "顶级表现，每个字节都物尽其用。"},
		emojis:   []string{"🤩", "🎉", "🏆"},
	},
	TierGreat: {
		emotion:  "开心",
		comments: []string{"效果很棒，体积与画质平衡得当。", "压缩扎实，在冷头屏上会非常清晰。", "细节与体积的取舍非常到位。"},
		emojis:   []string{"😄", "👍", "✨"},
	},
	TierGood: {
		emotion:  "满意",
		comments: []string{"效果不错，还有一点压缩空间。", "对大多数屏幕来说足够了。", "压缩合理，下次可以试试均衡预设。"},
		emojis:   []string{"🙂", "👌", "💪"},
	},
	TierAverage: {
		emotion:  "一般",
		comments: []string{"效果一般，原图可能已经压缩得很好了。", "这次没省下多少，换个格式试试。", "文件不太好压，不必担心。"},
		emojis:   []string{"😐", "🤔", "🔧"},
	},
}

// matcher picks the closest supported template language for a locale tag.
var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Chinese,
})

var (
	pickMu  sync.Mutex
	pickRNG = rand.New(rand.NewSource(rand.Int63()))
)

// pickTemplate selects emotion/comment/emoji for a tier and locale. The pick
// within a tier is pseudo-random; callers can only rely on tier and shape.
func pickTemplate(tier Tier, locale string) (string, string, string) {
	templates := englishTemplates
	if tag, err := language.Parse(locale); err == nil {
		if _, idx, _ := matcher.Match(tag); idx == 1 {
			templates = chineseTemplates
		}
	}

	set, ok := templates[tier]
	if !ok {
		set = templates[TierAverage]
	}

	pickMu.Lock()
	comment := set.comments[pickRNG.Intn(len(set.comments))]
	emoji := set.emojis[pickRNG.Intn(len(set.emojis))]
	pickMu.Unlock()

	return set.emotion, comment, emoji
}
