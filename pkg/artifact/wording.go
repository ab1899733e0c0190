// wording.go — Default titles, captions and emotions when the caller gives none.
package artifact

import (
	"math/rand"

	"github.com/xob0t/memoria/pkg/media"
)

// Emotions a certificate may carry when the photo has no mood tag.
var Emotions = []string{"happy", "peaceful", "nostalgic", "excited"}

var certificateTitles = map[media.Subject]map[string][]string{
	media.SubjectPeople: {
		"happy":     {"Certificate of Pure Joy", "Moment of Radiant Happiness", "Celebration of Unbridled Bliss", "Portrait of Perfect Contentment"},
		"peaceful":  {"Certificate of Tranquil Togetherness", "Sanctuary of Shared Serenity", "Moment of Perfect Harmony", "Haven of Quiet Grace"},
		"nostalgic": {"Treasured Memory Preserved", "Golden Hour of Remembrance", "Certificate of Timeless Love", "Vintage Moment of Wonder"},
		"excited":   {"Certificate of Pure Excitement", "Burst of Electric Energy", "Moment of Explosive Joy", "Celebration of Boundless Enthusiasm"},
	},
	media.SubjectScenery: {
		"happy":     {"Certificate of Natural Wonder", "Landscape of Pure Beauty", "Nature's Golden Moment", "Vista of Endless Joy"},
		"peaceful":  {"Certificate of Serene Beauty", "Sanctuary of Natural Peace", "Moment of Earth's Tranquility", "Haven of Natural Grace"},
		"nostalgic": {"Timeless Landscape Preserved", "Golden Hour of Nature", "Certificate of Eternal Beauty", "Vintage View of Wonder"},
		"excited":   {"Certificate of Natural Drama", "Burst of Earth's Energy", "Moment of Wild Beauty", "Celebration of Nature's Power"},
	},
	media.SubjectObject: {
		"happy":     {"Certificate of Simple Joy", "Moment of Everyday Wonder", "Celebration of Pure Delight", "Portrait of Life's Treasures"},
		"peaceful":  {"Certificate of Quiet Beauty", "Sanctuary of Simple Grace", "Moment of Gentle Stillness", "Haven of Peaceful Form"},
		"nostalgic": {"Treasured Object Preserved", "Golden Memory of Time", "Certificate of Vintage Charm", "Moment of Timeless Beauty"},
		"excited":   {"Certificate of Dynamic Form", "Burst of Creative Energy", "Moment of Artistic Wonder", "Celebration of Bold Beauty"},
	},
}

var certificateCaptions = map[media.Subject][]string{
	media.SubjectPeople: {
		"In this precious moment, love speaks through every smile, creating a memory that will warm hearts for generations to come.",
		"The gentle art of being present with those who matter most, where happiness radiates from every corner of this beautiful frame.",
		"A testament to the bonds that make life extraordinary, captured in a single breath of pure, unguarded joy.",
		"Where laughter lives and hearts find their home, this moment whispers the language only souls understand.",
		"This moment holds the magic of authentic connection, where time stands still and hearts speak without words.",
	},
	media.SubjectScenery: {
		"Golden hour painting the world in whispers of light, where earth meets sky in perfect, silent harmony that speaks to the soul.",
		"Nature's masterpiece captured in a single breath, revealing the quiet beauty of a world that never stops creating wonder.",
		"Where time stands still and beauty speaks without words, this landscape holds the poetry of existence in its gentle embrace.",
		"The quiet symphony of earth and sky, composed in perfect harmony, where silence holds more music than any song.",
		"The cathedral of open sky, where prayers are made of light and every cloud carries a message of hope and possibility.",
	},
	media.SubjectObject: {
		"The quiet beauty found in life's simple treasures, where ordinary things become extraordinary through the lens of mindful attention.",
		"A moment of stillness in a world that never stops moving, revealing the profound beauty hidden in the everyday details of existence.",
		"Where simplicity meets the sacred, this gentle reminder shows us that wonder lives in the smallest corners of our daily lives.",
		"The gentle art of finding magic in the everyday, where familiar objects become vessels for memory, meaning, and quiet contemplation.",
		"A precious reminder that wonder lives in the details, where the act of truly seeing transforms the mundane into the magnificent.",
	},
}

var wheelCaptions = map[media.Subject][]string{
	media.SubjectPeople: {
		"Smiles that never fade, carrying the warmth of this perfect moment.",
		"Unspoken bonds visible in every glance, every gentle gesture.",
		"The laughter here still echoes in the spaces between heartbeats.",
		"Eyes that hold stories only the heart knows how to tell.",
		"In this frame, love found its most honest expression.",
	},
	media.SubjectScenery: {
		"Twilight over soft hills, painting the world in whispered promises.",
		"Stillness beneath the sky, where time learns to hold its breath.",
		"Golden hour casting its spell over the earth's quiet secrets.",
		"Where horizon meets heaven, dreams take their first tentative steps.",
		"Morning mist dancing over fields of endless possibility.",
	},
	media.SubjectObject: {
		"The quiet beauty found in life's simple, overlooked treasures.",
		"Where ordinary things become extraordinary through the lens of memory.",
		"The gentle art of finding magic in the everyday moments.",
		"A testament to the poetry hidden in plain sight.",
		"The weight of memory resting gently on familiar things.",
	},
}

// PickEmotion returns the photo's mood tag or a random emotion.
func PickEmotion(a media.Asset, rng *rand.Rand) string {
	if e := a.Emotion(""); e != "" {
		return e
	}
	return Emotions[rng.Intn(len(Emotions))]
}

// PickTitle returns a certificate title for the subject and emotion.
// Unknown emotions use the "happy" titles.
func PickTitle(subject media.Subject, emotion string, rng *rand.Rand) string {
	bySubject := certificateTitles[subject]
	if bySubject == nil {
		bySubject = certificateTitles[media.SubjectObject]
	}
	titles, ok := bySubject[emotion]
	if !ok {
		titles = bySubject["happy"]
	}
	return titles[rng.Intn(len(titles))]
}

// PickCaption returns a certificate caption for the subject.
func PickCaption(subject media.Subject, rng *rand.Rand) string {
	return pick(certificateCaptions, subject, rng)
}

// PickWheelCaption returns a short reveal caption for the subject.
func PickWheelCaption(subject media.Subject, rng *rand.Rand) string {
	return pick(wheelCaptions, subject, rng)
}

func pick(pool map[media.Subject][]string, subject media.Subject, rng *rand.Rand) string {
	list, ok := pool[subject]
	if !ok {
		list = pool[media.SubjectPeople]
	}
	return list[rng.Intn(len(list))]
}

// MomentEmotions tags portrait frames whose clip carries no mood.
var MomentEmotions = []string{
	"wonder", "tenderness", "anticipation", "serenity", "joy",
	"contemplation", "love", "surprise", "peace", "nostalgia",
	"hope", "vulnerability", "strength", "connection", "grace",
}

var momentCaptions = []string{
	"A fleeting moment where vulnerability meets strength in perfect silence.",
	"The exact instant when surprise transforms into pure, unguarded wonder.",
	"Eyes that hold the weight of unspoken stories and hidden dreams.",
	"A gesture so subtle yet profound, speaking volumes without words.",
	"The breath before laughter, full of anticipation and pure joy.",
	"A glance that captures the essence of human connection in motion.",
	"The quiet beauty of a soul revealing itself in an unguarded moment.",
	"An expression that transcends time, capturing the poetry of being alive.",
	"The gentle movement that speaks louder than any declaration of love.",
	"A scene where light and shadow dance to reveal hidden emotions.",
	"The instant when ordinary becomes extraordinary through pure authenticity.",
	"A moment of stillness in motion, where time seems to hold its breath.",
	"The subtle shift that reveals the depth beneath the surface.",
	"A frame where emotion and movement create perfect visual harmony.",
	"The unspoken conversation between heart and soul, captured forever.",
}

// PickMomentCaption returns a caption for an unspoken-moment frame.
func PickMomentCaption(rng *rand.Rand) string {
	return momentCaptions[rng.Intn(len(momentCaptions))]
}
