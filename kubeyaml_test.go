package kubeyaml_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/KimNorgaard/go-kubeyaml"
	"github.com/KimNorgaard/go-kubeyaml/apis"
)

// quantityComparer compares quantities by value; Quantity caches its
// formatted string internally, so field-wise comparison is meaningless.
var quantityComparer = cmp.Comparer(func(a, b resource.Quantity) bool {
	return a.Cmp(b) == 0
})

func TestRoundTrip(t *testing.T) {
	t.Run("Pod", func(t *testing.T) {
		pod := apis.Pod{
			TypeMeta: apis.TypeMeta{Kind: "Pod", APIVersion: "v1"},
			Metadata: apis.ObjectMeta{
				Name:      "web",
				Namespace: "default",
				Labels:    map[string]string{"app": "web", "tier": "frontend"},
			},
			Spec: apis.PodSpec{
				RestartPolicy: "Always",
				Containers: []apis.Container{{
					Name:    "nginx",
					Image:   "nginx:1.27",
					Command: []string{"nginx"},
					Args:    []string{"-g", "daemon off;"},
					Env:     []apis.EnvVar{{Name: "MODE", Value: "production"}},
					Ports:   []apis.ContainerPort{{Name: "http", ContainerPort: 8080, Protocol: "TCP"}},
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
		back, err := kubeyaml.Decode[apis.Pod](out, kubeyaml.Strict())
		require.NoError(t, err)
		if diff := cmp.Diff(pod, back, quantityComparer); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Service", func(t *testing.T) {
		svc := apis.Service{
			TypeMeta: apis.TypeMeta{Kind: "Service", APIVersion: "v1"},
			Metadata: apis.ObjectMeta{Name: "web"},
			Spec: apis.ServiceSpec{
				Selector: map[string]string{"app": "web"},
				Type:     "ClusterIP",
				Ports: []apis.ServicePort{
					{Name: "http", Port: 80, TargetPort: intstr.FromString("http")},
					{Name: "https", Port: 443, TargetPort: intstr.FromInt32(8443)},
				},
			},
		}
		out, err := kubeyaml.Encode(svc)
		require.NoError(t, err)
		back, err := kubeyaml.Decode[apis.Service](out, kubeyaml.Strict())
		require.NoError(t, err)
		if diff := cmp.Diff(svc, back); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Deployment Stream", func(t *testing.T) {
		replicas := int32(3)
		dep := apis.Deployment{
			TypeMeta: apis.TypeMeta{Kind: "Deployment", APIVersion: "apps/v1"},
			Metadata: apis.ObjectMeta{Name: "web"},
			Spec: apis.DeploymentSpec{
				Replicas: &replicas,
				Selector: &apis.LabelSelector{MatchLabels: map[string]string{"app": "web"}},
				Template: apis.PodTemplateSpec{
					Metadata: apis.ObjectMeta{Labels: map[string]string{"app": "web"}},
					Spec: apis.PodSpec{
						Containers: []apis.Container{{Name: "app", Image: "app:1"}},
					},
				},
			},
		}
		cm := apis.ConfigMap{
			TypeMeta: apis.TypeMeta{Kind: "ConfigMap", APIVersion: "v1"},
			Metadata: apis.ObjectMeta{Name: "web-config"},
			Data:     map[string]string{"mode": "production"},
		}

		out, err := kubeyaml.EncodeAll([]any{dep, cm})
		require.NoError(t, err)
		objs, err := kubeyaml.DecodeAll(out, kubeyaml.Strict())
		require.NoError(t, err)
		require.Len(t, objs, 2)
		if diff := cmp.Diff(&dep, objs[0], quantityComparer); diff != "" {
			t.Fatalf("deployment mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(&cm, objs[1]); diff != "" {
			t.Fatalf("configmap mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestConcurrentCalls(t *testing.T) {
	data := []byte(`---
kind: Pod
apiVersion: v1
metadata:
  name: web
---
kind: Service
apiVersion: v1
metadata:
  name: web
`)
	pod := apis.Pod{
		TypeMeta: apis.TypeMeta{Kind: "Pod", APIVersion: "v1"},
		Metadata: apis.ObjectMeta{Name: "web"},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			objs, err := kubeyaml.DecodeAll(data)
			if err == nil && len(objs) != 2 {
				err = fmt.Errorf("expected 2 objects, got %d", len(objs))
			}
			errs <- err
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := kubeyaml.Encode(pod)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
