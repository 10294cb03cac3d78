package server_test

import (
	"github.com/akmonengine/featherserver/actor"
	"github.com/akmonengine/featherserver/internal/config"
	"github.com/akmonengine/featherserver/rid"
	"github.com/akmonengine/featherserver/server"
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const frame = 1.0 / 60.0

func at(x, y, z float64) actor.Transform {
	return actor.TransformFrom(mgl64.Vec3{x, y, z}, mgl64.QuatIdent())
}

var _ = Describe("Frame protocol", func() {
	var (
		srv    *server.Server
		space  rid.RID
		b1, b2 rid.RID
	)

	BeforeEach(func() {
		srv = server.New(config.DefaultPhysics(), nil)
		srv.Init()
		DeferCleanup(srv.Finish)

		space = srv.SpaceCreate()
		b1 = srv.BodyCreate()
		b2 = srv.BodyCreate()
		Expect(srv.BodySetSpace(b1, space)).To(Succeed())
		Expect(srv.BodySetSpace(b2, space)).To(Succeed())
		Expect(srv.BodyAddShape(b1, srv.SphereShapeCreate(), actor.NewTransform(), false)).To(Succeed())
		Expect(srv.SpaceSetActive(space, true)).To(Succeed())
	})

	It("hands out the direct state only inside the sync window", func() {
		Expect(srv.Step(frame)).To(Succeed())
		srv.Sync()

		state, err := srv.SpaceGetDirectState(space)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).NotTo(BeNil())

		srv.EndSync()
		_, err = srv.SpaceGetDirectState(space)
		Expect(err).To(MatchError(server.ErrStateUnavailable))
	})

	DescribeTable("direct state availability",
		func(sync bool, want error) {
			Expect(srv.Step(frame)).To(Succeed())
			if sync {
				srv.Sync()
				defer srv.EndSync()
			}

			_, err := srv.SpaceGetDirectState(space)
			if want == nil {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(want))
			}
		},
		Entry("after step, window closed", false, server.ErrStateUnavailable),
		Entry("after step, window open", true, nil),
	)

	It("rejects stepping with the sync window open", func() {
		srv.Sync()
		Expect(srv.Step(frame)).To(MatchError(server.ErrSyncWindowOpen))
		srv.EndSync()
		Expect(srv.Step(frame)).To(Succeed())
	})

	It("keeps stepping every active space once", func() {
		Expect(srv.SpaceSetActive(space, true)).To(Succeed())

		var heights []float64
		Expect(srv.BodySetStateSyncCallback(b1, func(state server.BodyDirectState) {
			heights = append(heights, state.Transform.Position.Y())
		})).To(Succeed())

		for range 3 {
			Expect(srv.Step(frame)).To(Succeed())
			srv.Sync()
			Expect(srv.FlushQueries()).To(Succeed())
			srv.EndSync()
		}

		Expect(heights).To(HaveLen(3))
		Expect(heights[1]).To(BeNumerically("<", heights[0]))
		Expect(heights[2]).To(BeNumerically("<", heights[1]))
	})

	It("does nothing while the server is inactive", func() {
		srv.SetActive(false)
		for range 10 {
			Expect(srv.Step(frame)).To(Succeed())
		}

		xform, err := srv.BodyGetTransform(b1)
		Expect(err).NotTo(HaveOccurred())
		Expect(xform.Position).To(Equal(mgl64.Vec3{}))
	})

	Context("when the space is freed", func() {
		BeforeEach(func() {
			Expect(srv.Free(space)).To(Succeed())
		})

		It("invalidates the handle", func() {
			_, err := srv.SpaceIsActive(space)
			Expect(err).To(MatchError(server.ErrInvalidHandle))
			Expect(srv.Free(space)).To(MatchError(server.ErrInvalidHandle))
		})

		It("leaves the bodies alive outside any space", func() {
			got, err := srv.BodyGetSpace(b1)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(rid.Invalid))
			Expect(srv.Step(frame)).To(Succeed())
		})
	})

	Describe("soft bodies", func() {
		It("always fails", func() {
			_, err := srv.SoftBodyCreate()
			Expect(err).To(MatchError(server.ErrSoftBodyUnsupported))
			Expect(srv.SoftBodySetSpace(b1, space)).To(MatchError(server.ErrSoftBodyUnsupported))
			Expect(srv.SoftBodySetTotalMass(b1, 2)).To(MatchError(server.ErrSoftBodyUnsupported))
		})
	})
})

var _ = Describe("Area monitoring", func() {
	var (
		srv   *server.Server
		space rid.RID
		area  rid.RID
	)

	BeforeEach(func() {
		srv = server.New(config.DefaultPhysics(), nil)
		srv.Init()
		DeferCleanup(srv.Finish)

		space = srv.SpaceCreate()
		Expect(srv.SpaceSetActive(space, true)).To(Succeed())

		box := srv.BoxShapeCreate()
		Expect(srv.ShapeSetData(box, mgl64.Vec3{1, 1, 1})).To(Succeed())
		area = srv.AreaCreate()
		Expect(srv.AreaAddShape(area, box, actor.NewTransform(), false)).To(Succeed())
		Expect(srv.AreaSetSpace(area, space)).To(Succeed())
	})

	It("reports a falling body entering and leaving", func() {
		body := srv.BodyCreate()
		Expect(srv.BodyAddShape(body, srv.SphereShapeCreate(), actor.NewTransform(), false)).To(Succeed())
		Expect(srv.BodySetTransform(body, at(0, 2, 0))).To(Succeed())
		Expect(srv.BodySetSpace(body, space)).To(Succeed())

		var statuses []server.AreaBodyStatus
		Expect(srv.AreaSetMonitorCallback(area, func(event server.AreaMonitorEvent) {
			Expect(event.Object).To(Equal(body))
			statuses = append(statuses, event.Status)
		})).To(Succeed())

		for range 120 {
			Expect(srv.Step(frame)).To(Succeed())
			srv.Sync()
			Expect(srv.FlushQueries()).To(Succeed())
			srv.EndSync()
		}

		Expect(statuses).To(Equal([]server.AreaBodyStatus{server.AreaBodyAdded, server.AreaBodyRemoved}))
	})
})
