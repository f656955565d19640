package kubeyaml_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/KimNorgaard/go-kubeyaml"
	"github.com/KimNorgaard/go-kubeyaml/apis"
)

func TestIntOrString(t *testing.T) {
	t.Run("Integer Literal", func(t *testing.T) {
		data := []byte(`
kind: Service
apiVersion: v1
spec:
  ports:
    - port: 80
      targetPort: 8080
`)
		svc, err := kubeyaml.Decode[apis.Service](data)
		require.NoError(t, err)
		tp := svc.Spec.Ports[0].TargetPort
		require.Equal(t, intstr.Int, tp.Type)
		require.Equal(t, 8080, tp.IntValue())
	})

	t.Run("Named Port", func(t *testing.T) {
		data := []byte(`
kind: Service
apiVersion: v1
spec:
  ports:
    - port: 80
      targetPort: http
`)
		svc, err := kubeyaml.Decode[apis.Service](data)
		require.NoError(t, err)
		tp := svc.Spec.Ports[0].TargetPort
		require.Equal(t, intstr.String, tp.Type)
		require.Equal(t, "http", tp.StrVal)
	})

	t.Run("Quoted Number Stays A String", func(t *testing.T) {
		data := []byte(`
kind: Service
apiVersion: v1
spec:
  ports:
    - port: 80
      targetPort: "8080"
`)
		svc, err := kubeyaml.Decode[apis.Service](data)
		require.NoError(t, err)
		tp := svc.Spec.Ports[0].TargetPort
		require.Equal(t, intstr.String, tp.Type)
		require.Equal(t, "8080", tp.StrVal)
	})

	t.Run("Representation Survives A Round Trip", func(t *testing.T) {
		svc := apis.Service{
			TypeMeta: apis.TypeMeta{Kind: "Service", APIVersion: "v1"},
			Spec: apis.ServiceSpec{
				Ports: []apis.ServicePort{
					{Port: 80, TargetPort: intstr.FromString("80")},
					{Port: 443, TargetPort: intstr.FromInt32(8443)},
				},
			},
		}
		out, err := kubeyaml.Encode(svc)
		require.NoError(t, err)
		require.Contains(t, string(out), `targetPort: "80"`)
		require.Contains(t, string(out), "targetPort: 8443")

		back, err := kubeyaml.Decode[apis.Service](out)
		require.NoError(t, err)
		require.Equal(t, intstr.String, back.Spec.Ports[0].TargetPort.Type)
		require.Equal(t, "80", back.Spec.Ports[0].TargetPort.StrVal)
		require.Equal(t, intstr.Int, back.Spec.Ports[1].TargetPort.Type)
		require.Equal(t, 8443, back.Spec.Ports[1].TargetPort.IntValue())
	})
}

func TestByteSlices(t *testing.T) {
	t.Run("Raw Text Decoding", func(t *testing.T) {
		data := []byte(`
kind: Secret
apiVersion: v1
data:
  greeting: hi
`)
		sec, err := kubeyaml.Decode[apis.Secret](data)
		require.NoError(t, err)
		require.Equal(t, []byte{0x68, 0x69}, sec.Data["greeting"])
	})

	t.Run("Empty Scalar Is Absent", func(t *testing.T) {
		data := []byte(`
kind: Secret
apiVersion: v1
data:
  explicit: ""
  implicit:
`)
		sec, err := kubeyaml.Decode[apis.Secret](data)
		require.NoError(t, err)
		require.Contains(t, sec.Data, "explicit")
		require.Nil(t, sec.Data["explicit"])
		require.Contains(t, sec.Data, "implicit")
		require.Nil(t, sec.Data["implicit"])
	})

	t.Run("Round Trip", func(t *testing.T) {
		sec := apis.Secret{
			TypeMeta: apis.TypeMeta{Kind: "Secret", APIVersion: "v1"},
			Data:     map[string][]byte{"token": []byte("s3cr3t")},
		}
		out, err := kubeyaml.Encode(sec)
		require.NoError(t, err)
		require.Contains(t, string(out), "token: s3cr3t")

		back, err := kubeyaml.Decode[apis.Secret](out)
		require.NoError(t, err)
		require.Equal(t, []byte("s3cr3t"), back.Data["token"])
	})
}

func TestQuantities(t *testing.T) {
	t.Run("Decode", func(t *testing.T) {
		data := []byte(`
kind: Pod
apiVersion: v1
spec:
  containers:
    - name: app
      resources:
        limits:
          cpu: 500m
          memory: 1Gi
        requests:
          cpu: 250m
`)
		pod, err := kubeyaml.Decode[apis.Pod](data)
		require.NoError(t, err)
		limits := pod.Spec.Containers[0].Resources.Limits
		cpu := resource.MustParse("500m")
		mem := resource.MustParse("1Gi")
		gotCPU := limits["cpu"]
		gotMem := limits["memory"]
		require.Zero(t, gotCPU.Cmp(cpu))
		require.Zero(t, gotMem.Cmp(mem))
	})

	t.Run("Canonical Form On Encode", func(t *testing.T) {
		pod := apis.Pod{
			TypeMeta: apis.TypeMeta{Kind: "Pod", APIVersion: "v1"},
			Spec: apis.PodSpec{
				Containers: []apis.Container{{
					Name: "app",
					Resources: apis.ResourceRequirements{
						Limits: map[string]resource.Quantity{
							"cpu":    resource.MustParse("500m"),
							"memory": resource.MustParse("1Gi"),
						},
					},
				}},
			},
		}
		out, err := kubeyaml.Encode(pod)
		require.NoError(t, err)
		require.Contains(t, string(out), "cpu: 500m")
		require.Contains(t, string(out), "memory: 1Gi")
	})

	t.Run("Whole Number Quantity Is Quoted", func(t *testing.T) {
		pod := apis.Pod{
			TypeMeta: apis.TypeMeta{Kind: "Pod", APIVersion: "v1"},
			Spec: apis.PodSpec{
				Containers: []apis.Container{{
					Name: "app",
					Resources: apis.ResourceRequirements{
						Limits: map[string]resource.Quantity{"cpu": resource.MustParse("2")},
					},
				}},
			},
		}
		out, err := kubeyaml.Encode(pod)
		require.NoError(t, err)
		require.Contains(t, string(out), `cpu: "2"`)
	})

	t.Run("Invalid Quantity", func(t *testing.T) {
		data := []byte(`
kind: Pod
apiVersion: v1
spec:
  containers:
    - name: app
      resources:
        limits:
          cpu: 4x5
`)
		_, err := kubeyaml.Decode[apis.Pod](data)
		var se *kubeyaml.ScalarError
		require.ErrorAs(t, err, &se)
		require.Equal(t, "4x5", se.Raw)
	})
}
