package pathutil_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pixelfinder/shimejifinder/pathutil"
)

var _ = Describe("pathutil", func() {
	Context("ToLower", func() {
		It("lower-cases ASCII only", func() {
			Expect(pathutil.ToLower("MyPet/IMG/Shime1.PNG")).To(Equal("mypet/img/shime1.png"))
		})

		It("leaves non-ASCII bytes untouched", func() {
			Expect(pathutil.ToLower("動作.XML")).To(Equal("動作.xml"))
		})
	})

	Context("Extension", func() {
		It("returns the substring after the last dot in the last component", func() {
			Expect(pathutil.Extension("MyPet/conf/actions.xml")).To(Equal("xml"))
		})

		It("returns empty when there is no dot", func() {
			Expect(pathutil.Extension("MyPet/conf/actions")).To(Equal(""))
		})

		It("ignores dots in earlier path components", func() {
			Expect(pathutil.Extension("v1.2/img/shime1.png")).To(Equal("png"))
		})
	})

	Context("LastComponent", func() {
		It("returns the substring after the last slash", func() {
			Expect(pathutil.LastComponent("MyPet/img/shime1.png")).To(Equal("shime1.png"))
		})

		It("returns the whole string when there is no slash", func() {
			Expect(pathutil.LastComponent("shime1.png")).To(Equal("shime1.png"))
		})
	})

	Context("NormalizeFilename", func() {
		It("strips leading slashes, replaces remaining ones, and lower-cases", func() {
			Expect(pathutil.NormalizeFilename("/Sub/Shime1.PNG")).To(Equal("sub_shime1.png"))
		})

		It("is a no-op for a bare filename", func() {
			Expect(pathutil.NormalizeFilename("shime1.png")).To(Equal("shime1.png"))
		})
	})
})
