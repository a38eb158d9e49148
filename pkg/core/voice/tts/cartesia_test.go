package tts

import (
	"net/http"
	"testing"
)

func TestNewCartesia_ConstructorsAndName(t *testing.T) {
	client := &http.Client{}
	p := NewCartesiaWithClient("api-key", client)
	if p.httpClient != client {
		t.Fatal("expected custom http client to be set")
	}
	if p.Name() != "cartesia" {
		t.Fatalf("name = %q, want cartesia", p.Name())
	}

	defaultProvider := NewCartesia("api-key")
	if defaultProvider.httpClient == nil {
		t.Fatal("default provider should initialize http client")
	}
}

func TestBuildOutputFormat(t *testing.T) {
	mp3 := buildOutputFormat(SynthesizeOptions{Format: "mp3", SampleRate: 44100})
	if mp3.Container != "mp3" || mp3.SampleRate != 44100 || mp3.BitRate == 0 {
		t.Fatalf("mp3 format = %#v, want mp3/44100/non-zero bitrate", mp3)
	}

	pcm := buildOutputFormat(SynthesizeOptions{Format: "pcm", SampleRate: 16000})
	if pcm.Container != "raw" || pcm.Encoding != "pcm_s16le" || pcm.SampleRate != 16000 {
		t.Fatalf("pcm format = %#v, want raw/pcm_s16le/16000", pcm)
	}

	wavDefault := buildOutputFormat(SynthesizeOptions{})
	if wavDefault.Container != "wav" || wavDefault.Encoding != "pcm_s16le" || wavDefault.SampleRate != 24000 {
		t.Fatalf("default format = %#v, want wav/pcm_s16le/24000", wavDefault)
	}
}

func TestBuildRequest_VoiceAndLanguage(t *testing.T) {
	p := &CartesiaProvider{}

	req := p.buildRequest("hello", SynthesizeOptions{Voice: "voice-1", Language: "en", Speed: 0.9})
	if req.Voice.ID != "voice-1" || req.Voice.Mode != "id" {
		t.Fatalf("voice = %#v", req.Voice)
	}
	if req.Language == nil || *req.Language != "en" {
		t.Fatalf("language = %v, want en", req.Language)
	}
	if req.GenerationConfig == nil || req.GenerationConfig.Speed != 0.9 {
		t.Fatalf("generation config = %#v", req.GenerationConfig)
	}

	defaulted := p.buildRequest("hello", SynthesizeOptions{})
	if defaulted.Voice.ID != defaultVoiceID {
		t.Fatalf("voice = %q, want default", defaulted.Voice.ID)
	}
	if defaulted.GenerationConfig != nil {
		t.Fatal("generation config should be omitted when unset")
	}
}

func TestGetFormat(t *testing.T) {
	if got := getFormat("mp3"); got != "mp3" {
		t.Fatalf("getFormat(mp3) = %q, want mp3", got)
	}
	if got := getFormat("unknown"); got != "wav" {
		t.Fatalf("getFormat(unknown) = %q, want wav", got)
	}
}

func TestSynthesisStream_SendAfterClose(t *testing.T) {
	s := NewSynthesisStream()
	if !s.Send([]byte{1}) {
		t.Fatal("send on open stream should succeed")
	}
	s.Close()
	if s.Send([]byte{2}) {
		t.Fatal("send on closed stream should report false")
	}
}
