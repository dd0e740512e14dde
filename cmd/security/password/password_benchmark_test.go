package password

import "testing"

func BenchmarkHash(b *testing.B) {
	cfg := DefaultConfig()
	for i := 0; i < b.N; i++ {
		if _, err := cfg.Hash("correct horse battery staple"); err != nil {
			b.Fatalf("Hash: %v", err)
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	cfg := DefaultConfig()
	h, err := cfg.Hash("correct horse battery staple")
	if err != nil {
		b.Fatalf("Hash: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ok, err := cfg.Verify(h, "correct horse battery staple")
		if err != nil || !ok {
			b.Fatalf("Verify: ok=%v err=%v", ok, err)
		}
	}
}
