package services

// polarityLexicon scores opinion words on [-1, 1] for the lexical estimator.
var polarityLexicon = map[string]float64{
	"amazing": 0.6, "awesome": 1.0, "beautiful": 0.85, "best": 1.0, "better": 0.5,
	"brilliant": 0.9, "cheap": 0.4, "clean": 0.37, "comfortable": 0.4, "cool": 0.35,
	"decent": 0.17, "delighted": 0.7, "durable": 0.4, "easy": 0.43, "effective": 0.6,
	"elegant": 0.5, "enjoy": 0.4, "excellent": 1.0, "exceptional": 0.67, "fantastic": 0.4,
	"fast": 0.2, "fine": 0.42, "fresh": 0.3, "friendly": 0.38, "genuine": 0.4,
	"glad": 0.5, "good": 0.7, "gorgeous": 0.7, "great": 0.8, "happy": 0.8,
	"helpful": 0.5, "impressive": 1.0, "incredible": 0.9, "love": 0.5, "loved": 0.7,
	"lovely": 0.5, "nice": 0.6, "outstanding": 0.5, "perfect": 1.0, "pleasant": 0.73,
	"pleased": 0.5, "positive": 0.23, "premium": 0.5, "quick": 0.33, "recommend": 0.3,
	"reliable": 0.5, "satisfied": 0.5, "smooth": 0.4, "solid": 0.2, "sturdy": 0.4,
	"superb": 1.0, "useful": 0.3, "value": 0.2, "wonderful": 1.0, "worth": 0.3,

	"annoying": -0.8, "awful": -1.0, "bad": -0.7, "broke": -0.5, "broken": -0.4,
	"cheaply": -0.3, "defective": -0.7, "difficult": -0.5, "disappointed": -0.75, "disappointing": -0.6,
	"dull": -0.31, "expensive": -0.5, "fake": -0.5, "faulty": -0.6, "flimsy": -0.5,
	"fragile": -0.3, "hate": -0.8, "hated": -0.9, "horrible": -1.0, "late": -0.3,
	"mediocre": -0.3, "noisy": -0.4, "overpriced": -0.6, "pathetic": -1.0, "poor": -0.4,
	"problem": -0.3, "refund": -0.2, "sad": -0.5, "slow": -0.3, "terrible": -1.0,
	"ugly": -0.7, "unhappy": -0.6, "useless": -0.5, "waste": -0.6, "weak": -0.38,
	"worse": -0.4, "worst": -1.0, "wrong": -0.5,

	// product-review vocabulary
	"adore": 0.8, "flawless": 0.9, "flawlessly": 0.9, "terrific": 0.8, "sturdily": 0.4,
	"crisp": 0.4, "snappy": 0.4, "responsive": 0.4, "lightweight": 0.3, "bargain": 0.5,
	"unreliable": -0.7, "poorly": -0.6, "disappointment": -0.7, "drains": -0.4, "overheats": -0.6,
	"overheating": -0.6, "laggy": -0.5, "lags": -0.4, "hangs": -0.4, "leaks": -0.5,
	"cracked": -0.5, "damaged": -0.6, "duplicate": -0.5, "stopped": -0.3, "returned": -0.2,
}

// polarityIntensifiers scale the next opinion word.
var polarityIntensifiers = map[string]float64{
	"absolutely": 1.5, "extremely": 1.5, "highly": 1.4, "incredibly": 1.5, "quite": 1.1,
	"really": 1.3, "so": 1.3, "super": 1.4, "too": 1.2, "totally": 1.4,
	"very": 1.3, "utterly": 1.5, "completely": 1.4, "fairly": 0.9, "slightly": 0.7, "somewhat": 0.8, "barely": 0.6,
}

var negations = map[string]bool{
	"aint": true, "cannot": true, "cant": true, "didnt": true, "doesnt": true,
	"dont": true, "hardly": true, "isnt": true, "never": true, "no": true,
	"nobody": true, "none": true, "nor": true, "not": true, "nothing": true,
	"nowhere": true, "wasnt": true, "without": true, "wont": true, "wouldnt": true,
}
